package repository

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"testing"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/pressly/goose/v3"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var testDB *sql.DB

func setupTestDB() (func(context.Context, ...testcontainers.TerminateOption) error, error) {
	var (
		dbName = "testdb"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:15",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		return nil, err
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), "5432/tcp")
	if err != nil {
		return dbContainer.Terminate, err
	}

	connStr := "postgres://" + dbUser + ":" + dbPwd + "@" + dbHost + ":" + dbPort.Port() + "/" + dbName + "?sslmode=disable"
	testDB, err = sql.Open("pgx", connStr)
	if err != nil {
		return dbContainer.Terminate, err
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return dbContainer.Terminate, err
	}
	if err := goose.Up(testDB, "../../migrations"); err != nil {
		return dbContainer.Terminate, err
	}

	return dbContainer.Terminate, nil
}

func TestMain(m *testing.M) {
	teardown, err := setupTestDB()
	if err != nil {
		log.Fatalf("could not start postgres container: %v", err)
	}

	m.Run()

	if teardown != nil {
		if err := teardown(context.Background()); err != nil {
			log.Fatalf("could not teardown postgres container: %v", err)
		}
	}
}

func TestProperty_StoredPasswordsAreHashed(t *testing.T) {
	repo := NewUserRepository(testDB)
	ctx := context.Background()

	properties := gopter.NewProperties(nil)

	properties.Property("passwords are hashed with bcrypt and not stored as plaintext", prop.ForAll(
		func(email string, password string, name string) bool {
			_, _ = testDB.Exec("DELETE FROM users WHERE email = $1", email)

			hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				t.Logf("Failed to hash password: %v", err)
				return false
			}

			user := &domain.User{
				ID:           uuid.New(),
				Name:         name,
				Email:        email,
				PasswordHash: string(hashedPassword),
				Role:         domain.RoleCustomer,
				CreatedAt:    time.Now(),
			}

			if err := repo.Create(ctx, user); err != nil {
				t.Logf("Failed to create user: %v", err)
				return false
			}

			retrieved, err := repo.FindByEmail(ctx, email)
			if err != nil {
				t.Logf("Failed to find user: %v", err)
				return false
			}

			if retrieved.PasswordHash == password {
				t.Logf("Password was stored as plaintext!")
				return false
			}

			if err := bcrypt.CompareHashAndPassword([]byte(retrieved.PasswordHash), []byte(password)); err != nil {
				t.Logf("Stored password is not a valid bcrypt hash: %v", err)
				return false
			}

			_, _ = testDB.Exec("DELETE FROM users WHERE email = $1", email)

			return true
		},
		gen.RegexMatch(`[a-z]{5,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
		gen.RegexMatch(`[A-Z][a-z]{2,15}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestUserEmailUniqueness(t *testing.T) {
	repo := NewUserRepository(testDB)
	ctx := context.Background()

	email := "duplicate@example.com"
	_, _ = testDB.Exec("DELETE FROM users WHERE email = $1", email)

	first := &domain.User{
		ID:           uuid.New(),
		Name:         "First",
		Email:        email,
		PasswordHash: "hash",
		Role:         domain.RoleCustomer,
		CreatedAt:    time.Now(),
	}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("failed to create first user: %v", err)
	}

	second := &domain.User{
		ID:           uuid.New(),
		Name:         "Second",
		Email:        email,
		PasswordHash: "hash",
		Role:         domain.RoleCustomer,
		CreatedAt:    time.Now(),
	}
	err := repo.Create(ctx, second)
	if !errors.Is(err, ErrUserAlreadyExists) {
		t.Fatalf("expected ErrUserAlreadyExists, got %v", err)
	}

	_, _ = testDB.Exec("DELETE FROM users WHERE email = $1", email)
}

func TestTransactionRollsBackOnError(t *testing.T) {
	txManager := NewSQLTxManager(testDB)
	categoryRepo := NewCategoryRepository(testDB)
	ctx := context.Background()

	slug := "rollback-check"
	_, _ = testDB.Exec("DELETE FROM categories WHERE slug = $1", slug)

	sentinel := errors.New("boom")
	err := txManager.WithTransaction(ctx, func(ctx context.Context) error {
		category := &domain.Category{
			ID:        uuid.New(),
			Name:      "Rollback Check",
			Slug:      slug,
			CreatedAt: time.Now(),
		}
		if err := categoryRepo.Create(ctx, category); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}

	if _, err := categoryRepo.FindBySlug(ctx, slug); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected category to be rolled back, got %v", err)
	}
}
