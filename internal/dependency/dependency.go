package dependency

import (
	"context"
	"database/sql"
	"time"

	"github.com/jakubkanna/labguy-manager/internal/dto"
	"github.com/jakubkanna/labguy-manager/internal/entity"
	"github.com/jmoiron/sqlx"
)

type (
	ContextStore interface {
		Tx(ctx context.Context, fn func(ctx context.Context, store Repository) error) error
	}

	Works interface {
		// AddWork creates the general section and the work and returns the stored work.
		AddWork(ctx context.Context, w *entity.Work) (*entity.Work, error)
		UpdateWork(ctx context.Context, id int, w *entity.Work) (*entity.Work, error)
		GetWorkById(ctx context.Context, id int) (*entity.Work, error)
		ListWorks(ctx context.Context) ([]entity.Work, error)
	}

	Projects interface {
		AddProject(ctx context.Context, p *entity.Project) (*entity.Project, error)
		UpdateProject(ctx context.Context, id int, p *entity.Project) (*entity.Project, error)
		GetProjectById(ctx context.Context, id int) (*entity.Project, error)
		ListProjects(ctx context.Context) ([]entity.Project, error)
	}

	Posts interface {
		AddPost(ctx context.Context, p *entity.Post) (*entity.Post, error)
		UpdatePost(ctx context.Context, id int, p *entity.Post) (*entity.Post, error)
		GetPostById(ctx context.Context, id int) (*entity.Post, error)
		ListPosts(ctx context.Context) ([]entity.Post, error)
	}

	General interface {
		// DeleteByGeneralId deletes the general section of the given kind together with
		// the entity that owns it.
		DeleteByGeneralId(ctx context.Context, kind entity.ContentKind, generalId int) error
	}

	Media interface {
		// AddMedia stores a media record. A record whose etag is already stored is not
		// inserted again; the stored one is returned instead.
		AddMedia(ctx context.Context, media *entity.Media) (*entity.Media, error)
		GetMediaByEtag(ctx context.Context, etag string) (*entity.Media, error)
		DeleteMediaById(ctx context.Context, id int) error
		ListMediaPaged(ctx context.Context, limit, offset int, orderFactor entity.OrderFactor) ([]entity.Media, error)
		CountMedia(ctx context.Context) (int, error)
	}

	Tags interface {
		ListTags(ctx context.Context) ([]entity.Tag, error)
	}

	Preferences interface {
		GetPreferences(ctx context.Context) (*entity.Preferences, error)
		SetPreferences(ctx context.Context, p *entity.Preferences) error
	}

	Admin interface {
		AddAdmin(ctx context.Context, un, pwHash string) error
		DeleteAdmin(ctx context.Context, username string) error
		ChangePassword(ctx context.Context, un, newHash string) error
		PasswordHashByUsername(ctx context.Context, un string) (string, error)
	}

	Repository interface {
		Works() Works
		Projects() Projects
		Posts() Posts
		General() General
		Media() Media
		Tags() Tags
		Preferences() Preferences
		Admin() Admin
		Tx(ctx context.Context, f func(context.Context, Repository) error) error
		TxBegin(ctx context.Context) (Repository, error)
		TxCommit(ctx context.Context) error
		TxRollback(ctx context.Context) error
		Now() time.Time
		InTx() bool
		Close()
		Ping(ctx context.Context) error
		IsErrUniqueViolation(err error) bool
		IsErrorRepeat(err error) bool
		Cache() Cache
		DB() DB
	}

	// DB represents database interface.
	DB interface {
		BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
		ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)

		// sqlx methods
		GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
		NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
		QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
		QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error)
		SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	}

	FileStore interface {
		// UploadContentImage decodes a base64 data URL and uploads the image with its thumbnail.
		UploadContentImage(ctx context.Context, rawB64Image, folder, imageName string) (*entity.Media, error)
		// UploadContentVideo uploads mp4 or webm video to bucket
		UploadContentVideo(ctx context.Context, raw []byte, folder, videoName, contentType string) (*entity.Media, error)
		// UploadContentThreeD uploads a glTF binary or JSON model to bucket
		UploadContentThreeD(ctx context.Context, raw []byte, folder, objectName string) (*entity.Media, error)
		DeleteFromBucket(ctx context.Context, objectKeys []string) error
		// ListObjects lists uploaded originals straight from the bucket
		ListObjects(ctx context.Context) ([]entity.Media, error)
		// GetBaseFolder returns the base folder for the bucket
		GetBaseFolder() string
	}

	Revalidator interface {
		RevalidateAll(ctx context.Context, data *dto.RevalidationData) error
	}

	Cache interface {
		GetPreferences() entity.Preferences
		SetPreferences(p entity.Preferences)
	}
)
