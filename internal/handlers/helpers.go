package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/anonto42/pingup/backend/internal/apperr"
	"github.com/anonto42/pingup/backend/internal/middleware"
	"github.com/anonto42/pingup/backend/internal/services"
	"github.com/anonto42/pingup/backend/pkg/storage"
)

// currentUserID returns the authenticated user's id. Routes using it sit behind RequireUser.
func currentUserID(c echo.Context) primitive.ObjectID {
	if u := middleware.CurrentUser(c); u != nil {
		return u.ID
	}
	return primitive.NilObjectID
}

// objectIDParam parses a path parameter. Malformed ids cannot name a stored entity.
func objectIDParam(c echo.Context, name string, notFound error) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		return primitive.NilObjectID, notFound
	}
	return id, nil
}

func pagination(c echo.Context) services.Pagination {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	return services.Pagination{Page: page, Limit: limit}
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperr.Validation("Invalid request payload")
	}
	return c.Validate(req)
}

// uploads holds opened multipart files until the handler is done with them
type uploads struct {
	opened []multipart.File
}

func (u *uploads) Close() {
	for _, f := range u.opened {
		_ = f.Close()
	}
}

func (u *uploads) open(fh *multipart.FileHeader) (storage.Object, error) {
	f, err := fh.Open()
	if err != nil {
		return storage.Object{}, apperr.Validation("Could not read uploaded file")
	}
	u.opened = append(u.opened, f)
	return storage.Object{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	}, nil
}

// formError reports whether a multipart read failed. Absent files and non-multipart bodies are not failures.
func formError(err error) error {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingFile):
		return nil
	case errors.As(err, &tooLarge):
		return echo.ErrStatusRequestEntityTooLarge
	default:
		return apperr.Validation("Malformed multipart body")
	}
}

// all opens every file under field. A non-multipart request yields none.
func (u *uploads) all(c echo.Context, field string) ([]storage.Object, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, formError(err)
	}
	headers := form.File[field]
	out := make([]storage.Object, 0, len(headers))
	for _, fh := range headers {
		obj, err := u.open(fh)
		if err != nil {
			return nil, err
		}
		out = append(out, obj)
	}
	return out, nil
}

// file opens the single file under field, or returns nil if absent
func (u *uploads) file(c echo.Context, field string) (*storage.Object, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, formError(err)
	}
	obj, err := u.open(fh)
	if err != nil {
		return nil, err
	}
	return &obj, nil
}
