package compliance

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yuadm/first-step-greet/internal/domain/compliance"
	"github.com/yuadm/first-step-greet/internal/service/file"
)

type fakeTypeRepo struct {
	types map[string]compliance.Type
	seq   int
}

func newFakeTypeRepo(types ...compliance.Type) *fakeTypeRepo {
	r := &fakeTypeRepo{types: make(map[string]compliance.Type)}
	for _, t := range types {
		r.types[t.ID] = t
	}
	return r
}

func (r *fakeTypeRepo) Create(ctx context.Context, t compliance.Type) (compliance.Type, error) {
	for _, existing := range r.types {
		if existing.Name == t.Name {
			return compliance.Type{}, &pgconn.PgError{Code: "23505"}
		}
	}
	r.seq++
	t.ID = fmt.Sprintf("type-%d", r.seq)
	r.types[t.ID] = t
	return t, nil
}

func (r *fakeTypeRepo) GetByID(ctx context.Context, id string) (compliance.Type, error) {
	t, ok := r.types[id]
	if !ok {
		return compliance.Type{}, compliance.ErrTypeNotFound
	}
	return t, nil
}

func (r *fakeTypeRepo) List(ctx context.Context, activeOnly bool) ([]compliance.Type, error) {
	var out []compliance.Type
	for _, t := range r.types {
		if activeOnly && !t.IsActive {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeTypeRepo) Update(ctx context.Context, t compliance.Type) error {
	if _, ok := r.types[t.ID]; !ok {
		return compliance.ErrTypeNotFound
	}
	r.types[t.ID] = t
	return nil
}

type fakeRecordRepo struct {
	records map[compliance.TargetTable]map[string]compliance.Record
	seq     int
	filters []compliance.RecordFilter
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{records: map[compliance.TargetTable]map[string]compliance.Record{
		compliance.TargetEmployees: {},
		compliance.TargetClients:   {},
	}}
}

func (r *fakeRecordRepo) add(target compliance.TargetTable, rec compliance.Record) {
	r.records[target][rec.ID] = rec
}

func (r *fakeRecordRepo) List(ctx context.Context, target compliance.TargetTable, typeID string, filter compliance.RecordFilter) ([]compliance.Record, error) {
	r.filters = append(r.filters, filter)
	var out []compliance.Record
	for _, rec := range r.records[target] {
		if rec.ComplianceTypeID != typeID {
			continue
		}
		if filter.PeriodIdentifier != "" && rec.PeriodIdentifier != filter.PeriodIdentifier {
			continue
		}
		if filter.PeriodPrefix != "" && !strings.HasPrefix(rec.PeriodIdentifier, filter.PeriodPrefix) {
			continue
		}
		if len(filter.EntityIDs) > 0 && !slices.Contains(filter.EntityIDs, rec.EntityID) {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeRecordRepo) GetByID(ctx context.Context, target compliance.TargetTable, id string) (compliance.Record, error) {
	rec, ok := r.records[target][id]
	if !ok {
		return compliance.Record{}, compliance.ErrRecordNotFound
	}
	return rec, nil
}

func (r *fakeRecordRepo) Upsert(ctx context.Context, target compliance.TargetTable, rec compliance.Record) (compliance.Record, error) {
	for id, existing := range r.records[target] {
		if existing.ComplianceTypeID == rec.ComplianceTypeID &&
			existing.EntityID == rec.EntityID &&
			existing.PeriodIdentifier == rec.PeriodIdentifier {
			rec.ID = id
			rec.EvidencePath = existing.EvidencePath
			rec.CreatedAt = existing.CreatedAt
			r.records[target][id] = rec
			return rec, nil
		}
	}
	r.seq++
	rec.ID = fmt.Sprintf("rec-%d", r.seq)
	r.records[target][rec.ID] = rec
	return rec, nil
}

func (r *fakeRecordRepo) UpdateEvidence(ctx context.Context, target compliance.TargetTable, id string, path string) error {
	rec, ok := r.records[target][id]
	if !ok {
		return compliance.ErrRecordNotFound
	}
	rec.EvidencePath = &path
	r.records[target][id] = rec
	return nil
}

func (r *fakeRecordRepo) Delete(ctx context.Context, target compliance.TargetTable, id string) error {
	if _, ok := r.records[target][id]; !ok {
		return compliance.ErrRecordNotFound
	}
	delete(r.records[target], id)
	return nil
}

type fakeSubjects struct {
	byTarget map[compliance.TargetTable][]compliance.Subject
}

func (f *fakeSubjects) ListSubjects(ctx context.Context, target compliance.TargetTable, filter compliance.SubjectFilter) ([]compliance.Subject, error) {
	var out []compliance.Subject
	for _, s := range f.byTarget[target] {
		if filter.BranchID != nil && (s.BranchID == nil || *s.BranchID != *filter.BranchID) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeSubjects) SubjectExists(ctx context.Context, target compliance.TargetTable, id string) (bool, error) {
	for _, s := range f.byTarget[target] {
		if s.ID == id {
			return true, nil
		}
	}
	return false, nil
}

type fakeFileService struct {
	uploaded map[string]string
	deleted  []string
}

func (f *fakeFileService) UploadEvidence(ctx context.Context, complianceTypeID, recordID string, content io.Reader, filename string) (string, error) {
	if strings.HasSuffix(filename, ".exe") {
		return "", file.ErrUnsupportedFileType
	}
	b, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	if f.uploaded == nil {
		f.uploaded = make(map[string]string)
	}
	path := fmt.Sprintf("evidence/%s/%s/%s", complianceTypeID, recordID, filename)
	f.uploaded[path] = string(b)
	return path, nil
}

func (f *fakeFileService) DeleteFile(ctx context.Context, path string) error {
	f.deleted = append(f.deleted, path)
	return nil
}

func (f *fakeFileService) GetFileURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	return "http://files.test/" + path, nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	changed []string
}

func (n *recordingNotifier) RecordsChanged(typeID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changed = append(n.changed, typeID)
}

func (n *recordingNotifier) calls() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.changed...)
}
