package institute

import (
	"context"
	"fmt"
	"strings"
	"time"

	"MentorDesk/internal/apperror"
	"MentorDesk/internal/principal"
	"MentorDesk/internal/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrInstituteNotFound = apperror.NotFound("Institute not found")
	ErrNotInstituteAdmin = apperror.Forbidden("You are not an admin of this institute")
	ErrNameRequired      = apperror.Validation("Institute name is required")
	ErrAdminNotFound     = apperror.NotFound("Admin not found")
)

type Store interface {
	Insert(ctx context.Context, inst *Institute) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Institute, error)
	FindByAdmin(ctx context.Context, adminID primitive.ObjectID) ([]Institute, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*Institute, error)
}

// AdminLinker records on the admin side which institutes an admin runs.
type AdminLinker interface {
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
	AddInstitute(ctx context.Context, adminID, instituteID primitive.ObjectID) error
}

type InstituteService struct {
	repo   Store
	admins AdminLinker
	tx     store.Transactor
}

func NewInstituteService(repo Store, admins AdminLinker, tx store.Transactor) *InstituteService {
	return &InstituteService{repo: repo, admins: admins, tx: tx}
}

// Create stores a new institute with the caller as its first admin. Extra
// admins must already exist.
func (s *InstituteService) Create(ctx context.Context, caller *principal.Principal, req CreateRequest) (*Institute, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	admins, err := s.resolveAdmins(ctx, caller, req.Admins)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	inst := &Institute{
		Name:          name,
		Logo:          req.Logo,
		Description:   req.Description,
		Address:       req.Address,
		ContactNumber: req.ContactNumber,
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		Website:       req.Website,
		Subjects:      lowerAll(req.Subjects),
		Standards:     nonNil(req.Standards),
		Admins:        admins,
		Batches:       []primitive.ObjectID{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Insert(ctx, inst); err != nil {
			return apperror.Dependency("Failed to create institute", err)
		}
		for _, adminID := range admins {
			if err := s.admins.AddInstitute(ctx, adminID, inst.ID); err != nil {
				return apperror.Dependency("Failed to link institute to admin", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inst, nil
}

func (s *InstituteService) resolveAdmins(ctx context.Context, caller *principal.Principal, raw []string) ([]primitive.ObjectID, error) {
	admins := []primitive.ObjectID{caller.ID}
	seen := map[primitive.ObjectID]bool{caller.ID: true}
	for _, r := range raw {
		id, err := store.ParseID(r)
		if err != nil {
			return nil, err
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ok, err := s.admins.Exists(ctx, id)
		if err != nil {
			return nil, apperror.Dependency("Failed to load admin", err)
		}
		if !ok {
			return nil, fmt.Errorf("admin %s: %w", id.Hex(), ErrAdminNotFound)
		}
		admins = append(admins, id)
	}
	return admins, nil
}

func (s *InstituteService) Update(ctx context.Context, caller *principal.Principal, rawID string, req UpdateRequest) (*Institute, error) {
	inst, err := s.load(ctx, caller, rawID)
	if err != nil {
		return nil, err
	}
	set := bson.M{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		set["name"] = name
	}
	setString(set, "logo", req.Logo)
	setString(set, "description", req.Description)
	setString(set, "address", req.Address)
	setString(set, "contactNumber", req.ContactNumber)
	setString(set, "website", req.Website)
	if req.Email != nil {
		set["email"] = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Subjects != nil {
		set["subjects"] = lowerAll(*req.Subjects)
	}
	if req.Standards != nil {
		set["standards"] = nonNil(*req.Standards)
	}
	if len(set) == 0 {
		return inst, nil
	}

	updated, err := s.repo.Update(ctx, inst.ID, set)
	if err != nil {
		return nil, apperror.Dependency("Failed to update institute", err)
	}
	if updated == nil {
		return nil, ErrInstituteNotFound
	}
	return updated, nil
}

func (s *InstituteService) Mine(ctx context.Context, caller *principal.Principal) ([]Institute, error) {
	list, err := s.repo.FindByAdmin(ctx, caller.ID)
	if err != nil {
		return nil, apperror.Dependency("Failed to load institutes", err)
	}
	return list, nil
}

func (s *InstituteService) Get(ctx context.Context, caller *principal.Principal, rawID string) (*Institute, error) {
	return s.load(ctx, caller, rawID)
}

func (s *InstituteService) load(ctx context.Context, caller *principal.Principal, rawID string) (*Institute, error) {
	id, err := store.ParseID(rawID)
	if err != nil {
		return nil, err
	}
	inst, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Dependency("Failed to load institute", err)
	}
	if inst == nil {
		return nil, ErrInstituteNotFound
	}
	if !caller.IsSuperAdmin() && !isAdmin(inst, caller.ID) {
		return nil, ErrNotInstituteAdmin
	}
	return inst, nil
}

func isAdmin(inst *Institute, adminID primitive.ObjectID) bool {
	for _, id := range inst.Admins {
		if id == adminID {
			return true
		}
	}
	return false
}

func setString(set bson.M, key string, v *string) {
	if v != nil {
		set[key] = strings.TrimSpace(*v)
	}
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
