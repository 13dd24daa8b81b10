package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Kamal-Wagle/mucsitbackend/internal/app/models"
)

// Repositories holds all the repository instances
type Repositories struct {
	Users       *UserRepository
	Notes       Store[models.Note]
	Assignments Store[models.Assignment]
	Resources   Store[models.Resource]
	DriveFiles  Store[models.DriveFile]
}

// NewRepositories initializes PostgreSQL backed repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		Users:       NewUserRepository(NewPostgresStore(db, UserSchema())),
		Notes:       NewPostgresStore(db, NoteSchema()),
		Assignments: NewPostgresStore(db, AssignmentSchema()),
		Resources:   NewPostgresStore(db, ResourceSchema()),
		DriveFiles:  NewPostgresStore(db, DriveFileSchema()),
	}
}

// NewMemoryRepositories initializes in-memory repositories
func NewMemoryRepositories() *Repositories {
	return &Repositories{
		Users:       NewUserRepository(NewMemoryStore(UserSchema())),
		Notes:       NewMemoryStore(NoteSchema()),
		Assignments: NewMemoryStore(AssignmentSchema()),
		Resources:   NewMemoryStore(ResourceSchema()),
		DriveFiles:  NewMemoryStore(DriveFileSchema()),
	}
}
