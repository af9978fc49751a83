package settings

import (
	"context"
)

type SettingsService struct {
	repo Repository
}

func (s *SettingsService) Snapshot(ctx context.Context) (*Snapshot, error) {
	return s.repo.Snapshot(ctx)
}

func (s *SettingsService) checkPage(ctx context.Context, values map[string]interface{}) error {
	pageID, ok := values["sponsorshipPageId"].(uint)
	if !ok {
		return nil
	}
	exists, err := s.repo.PageExists(ctx, pageID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrPageNotFound
	}
	return nil
}

// Create validates data against the kind's required fields, drops keys outside
// its whitelist and stores the new record.
func (s *SettingsService) Create(ctx context.Context, kind Kind, data map[string]interface{}) (interface{}, error) {
	spec, ok := kindSpecs[kind]
	if !ok {
		return nil, ErrUnknownKind
	}
	if missing := spec.missing(data); len(missing) > 0 {
		return nil, &FieldsError{Reason: "missing required fields", Fields: missing}
	}
	values, err := spec.filter(data, spec.create)
	if err != nil {
		return nil, err
	}
	if err := s.checkPage(ctx, values); err != nil {
		return nil, err
	}

	record := spec.build(values)
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *SettingsService) Update(ctx context.Context, kind Kind, id uint, data map[string]interface{}) (interface{}, error) {
	spec, ok := kindSpecs[kind]
	if !ok {
		return nil, ErrUnknownKind
	}
	if id == 0 {
		return nil, ErrInvalidID
	}
	values, err := spec.filter(data, spec.update)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, ErrNoFields
	}
	if err := s.checkPage(ctx, values); err != nil {
		return nil, err
	}

	record := spec.newModel()
	if err := s.repo.Update(ctx, record, id, spec.columns(values)); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *SettingsService) Delete(ctx context.Context, kind Kind, id uint) error {
	spec, ok := kindSpecs[kind]
	if !ok {
		return ErrUnknownKind
	}
	if id == 0 {
		return ErrInvalidID
	}
	return s.repo.Delete(ctx, spec.newModel(), id)
}

// AllowedFields lists the fields accepted on update for kind.
func AllowedFields(kind Kind) []string {
	if spec, ok := kindSpecs[kind]; ok {
		return spec.update
	}
	return nil
}

func NewSettingsService(repo Repository) *SettingsService {
	return &SettingsService{repo: repo}
}
