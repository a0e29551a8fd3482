package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/registro-tarjetas/go-registro-backend/internal/domain"
)

// fakeDirectoryRepo implements DirectoryRepo with overridable func fields.
type fakeDirectoryRepo struct {
	findByCURP  func(ctx context.Context, db *gorm.DB, curp string) (*domain.PriorityPerson, error)
	search      func(ctx context.Context, db *gorm.DB, subprogram int, query string, limit int) ([]domain.PriorityPerson, error)
	create      func(ctx context.Context, db *gorm.DB, fullName, curp string, subprogram int) (*domain.PriorityPerson, error)
	findAuthUsr func(ctx context.Context, db *gorm.DB, curp string) (*domain.AuthorizedUser, error)
}

func (f fakeDirectoryRepo) FindPersonByCURP(ctx context.Context, db *gorm.DB, curp string) (*domain.PriorityPerson, error) {
	if f.findByCURP != nil {
		return f.findByCURP(ctx, db, curp)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f fakeDirectoryRepo) SearchPersons(ctx context.Context, db *gorm.DB, subprogram int, query string, limit int) ([]domain.PriorityPerson, error) {
	if f.search != nil {
		return f.search(ctx, db, subprogram, query, limit)
	}
	return nil, nil
}

func (f fakeDirectoryRepo) CreatePerson(ctx context.Context, db *gorm.DB, fullName, curp string, subprogram int) (*domain.PriorityPerson, error) {
	if f.create != nil {
		return f.create(ctx, db, fullName, curp, subprogram)
	}
	cp := curp
	return &domain.PriorityPerson{FullName: fullName, CURP: &cp, Subprogram: subprogram}, nil
}

func (f fakeDirectoryRepo) FindAuthorizedUser(ctx context.Context, db *gorm.DB, curp string) (*domain.AuthorizedUser, error) {
	if f.findAuthUsr != nil {
		return f.findAuthUsr(ctx, db, curp)
	}
	return nil, gorm.ErrRecordNotFound
}

// ---------- Search ----------

func TestDirectorySearch_QueryTooShort(t *testing.T) {
	s := NewDirectoryService(nil, fakeDirectoryRepo{})
	for _, q := range []string{"", " ", "a", " a  ", "á"} {
		if _, err := s.Search(context.Background(), q, 3); !errors.Is(err, ErrQueryTooShort) {
			t.Fatalf("Search(%q): expected ErrQueryTooShort, got %v", q, err)
		}
	}
}

func TestDirectorySearch_MissingSubprogram(t *testing.T) {
	s := NewDirectoryService(nil, fakeDirectoryRepo{})
	for _, sp := range []int{0, -1} {
		if _, err := s.Search(context.Background(), "GARCIA", sp); !errors.Is(err, ErrMissingSubprogram) {
			t.Fatalf("Search(sp=%d): expected ErrMissingSubprogram, got %v", sp, err)
		}
	}
}

func TestDirectorySearch_NormalizesQueryAndCapsResults(t *testing.T) {
	var gotQuery string
	var gotLimit, gotSP int
	s := NewDirectoryService(nil, fakeDirectoryRepo{
		search: func(_ context.Context, _ *gorm.DB, sp int, q string, limit int) ([]domain.PriorityPerson, error) {
			gotSP, gotQuery, gotLimit = sp, q, limit
			return []domain.PriorityPerson{{FullName: "JUAN GARCIA"}}, nil
		},
	})

	out, err := s.Search(context.Background(), "  garcía ", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 result, got %d", len(out))
	}
	if gotQuery != "GARCIA" {
		t.Fatalf("query not normalized: %q", gotQuery)
	}
	if gotSP != 3 || gotLimit != 10 {
		t.Fatalf("sp=%d limit=%d, want 3/10", gotSP, gotLimit)
	}
}

// ---------- RegisterPerson ----------

func TestRegisterPerson_ValidationOrder(t *testing.T) {
	s := NewDirectoryService(nil, fakeDirectoryRepo{})
	ctx := context.Background()

	cases := []struct {
		name string
		full string
		curp string
		sp   int
		want error
	}{
		{"no name", "  ", "PEGJ850101HDFRRN09", 3, ErrMissingName},
		{"no curp", "JUAN PEREZ", "  ", 3, ErrMissingCURP},
		{"bad curp", "JUAN PEREZ", "NOT-A-CURP", 3, ErrInvalidCURP},
		{"no sp", "JUAN PEREZ", "PEGJ850101HDFRRN09", 0, ErrMissingSubprogram},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.RegisterPerson(ctx, tc.full, tc.curp, tc.sp); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestRegisterPerson_NormalizesNameAndCURP(t *testing.T) {
	var gotName, gotCURP string
	s := NewDirectoryService(nil, fakeDirectoryRepo{
		create: func(_ context.Context, _ *gorm.DB, fullName, curp string, sp int) (*domain.PriorityPerson, error) {
			gotName, gotCURP = fullName, curp
			return &domain.PriorityPerson{FullName: fullName, Subprogram: sp}, nil
		},
	})

	if _, err := s.RegisterPerson(context.Background(), "  juan   pérez ", " pegj850101hdfrrn09 ", 3); err != nil {
		t.Fatalf("RegisterPerson: %v", err)
	}
	if gotName != "JUAN PEREZ" {
		t.Fatalf("name not normalized: %q", gotName)
	}
	if gotCURP != "PEGJ850101HDFRRN09" {
		t.Fatalf("curp not normalized: %q", gotCURP)
	}
}

func TestRegisterPerson_DuplicateByPrecheck(t *testing.T) {
	s := NewDirectoryService(nil, fakeDirectoryRepo{
		findByCURP: func(context.Context, *gorm.DB, string) (*domain.PriorityPerson, error) {
			return &domain.PriorityPerson{FullName: "YA EXISTE"}, nil
		},
	})
	_, err := s.RegisterPerson(context.Background(), "JUAN PEREZ", "PEGJ850101HDFRRN09", 3)
	if !errors.Is(err, ErrDuplicateCURP) {
		t.Fatalf("expected ErrDuplicateCURP, got %v", err)
	}
}

func TestRegisterPerson_DuplicateByUniqueIndex(t *testing.T) {
	// The pre-check misses (race), the insert itself hits the index.
	s := NewDirectoryService(nil, fakeDirectoryRepo{
		create: func(context.Context, *gorm.DB, string, string, int) (*domain.PriorityPerson, error) {
			return nil, errors.New("UNIQUE constraint failed: personas_prioritarias.curp")
		},
	})
	_, err := s.RegisterPerson(context.Background(), "JUAN PEREZ", "PEGJ850101HDFRRN09", 3)
	if !errors.Is(err, ErrDuplicateCURP) {
		t.Fatalf("expected ErrDuplicateCURP, got %v", err)
	}
}

func TestRegisterPerson_PrecheckErrorPropagates(t *testing.T) {
	boom := errors.New("db gone")
	s := NewDirectoryService(nil, fakeDirectoryRepo{
		findByCURP: func(context.Context, *gorm.DB, string) (*domain.PriorityPerson, error) {
			return nil, boom
		},
	})
	_, err := s.RegisterPerson(context.Background(), "JUAN PEREZ", "PEGJ850101HDFRRN09", 3)
	if !errors.Is(err, boom) {
		t.Fatalf("expected raw error, got %v", err)
	}
}

// ---------- Authorize ----------

func TestAuthorize(t *testing.T) {
	boom := errors.New("db gone")
	cases := []struct {
		name string
		curp string
		repo fakeDirectoryRepo
		want error
	}{
		{"missing", "  ", fakeDirectoryRepo{}, ErrMissingCURP},
		{"malformed", "NOT-A-CURP", fakeDirectoryRepo{}, ErrInvalidCURP},
		{"unknown", "PEGJ850101HDFRRN09", fakeDirectoryRepo{}, ErrNotAuthorized},
		{"repo error", "PEGJ850101HDFRRN09", fakeDirectoryRepo{
			findAuthUsr: func(context.Context, *gorm.DB, string) (*domain.AuthorizedUser, error) {
				return nil, boom
			},
		}, boom},
		{"authorized", "pegj850101hdfrrn09", fakeDirectoryRepo{
			findAuthUsr: func(_ context.Context, _ *gorm.DB, curp string) (*domain.AuthorizedUser, error) {
				if curp != "PEGJ850101HDFRRN09" {
					return nil, gorm.ErrRecordNotFound
				}
				return &domain.AuthorizedUser{ID: "au-1", CURP: curp}, nil
			},
		}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := NewDirectoryService(nil, tc.repo).Authorize(context.Background(), tc.curp)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}
