package bootstrap

import (
	"errors"
	"io/fs"
	"log"

	"github.com/joho/godotenv"
)

// Loadenv reads .env files into the process environment. Variables already
// set win over file values.
func Loadenv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Println("No .env file found, using system environment variables")
			return
		}
		log.Printf("Could not parse .env file: %v", err)
	}
}
