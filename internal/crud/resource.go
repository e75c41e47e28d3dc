package crud

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/openhelpdesk/helpdesk/internal/domain"
	"github.com/openhelpdesk/helpdesk/internal/pkg"
)

// Hooks are the lifecycle extension points of a Resource. Every callback is
// optional; nil means "allow and do nothing".
//
// Before* hooks may reject the operation by returning an error: the request
// is aborted with 400 (or the error's own status for *domain.AppError) and
// the entity is never persisted. After* hooks run once persistence has
// succeeded and cannot abort; they are for side effects only.
type Hooks[ID comparable, E any, C any, U any] struct {
	BeforeCreate       func(c *gin.Context, dto *C) error
	BeforeCreateEntity func(c *gin.Context, entity *E) error
	AfterCreate        func(c *gin.Context, entity *E)

	BeforeUpdate       func(c *gin.Context, id ID, dto *U, existing *E) error
	BeforeUpdateEntity func(c *gin.Context, entity *E) error
	AfterUpdate        func(c *gin.Context, entity *E)

	BeforeDelete func(c *gin.Context, id ID, existing *E) error
	AfterDelete  func(c *gin.Context, entity *E)
}

// Options configure a Resource. ParseID, EntityID, NewEntity, ApplyUpdate and
// ToResponse are required; everything else defaults to permissive no-ops.
type Options[ID comparable, E any, C any, U any, R any] struct {
	// ParseID converts the path parameter into the resource's key type.
	ParseID KeyParser[ID]

	// EntityID extracts the key from an entity, used for Location headers.
	EntityID func(*E) ID

	// SearchFields are entity field names the free-text search may match.
	SearchFields []string

	// Includes are navigation properties eager-loaded on list and get.
	Includes []string

	// SortFields is the allowlist of columns the client may sort by.
	SortFields []string

	// DefaultSort is the ORDER BY used without a client sort; "" means id ASC.
	DefaultSort string

	// InitialScope is a mandatory pre-filter applied after the total count.
	InitialScope func(*gorm.DB) *gorm.DB

	// BaseQuery overrides the default base query entirely, typically to apply
	// tenant scoping and structured filters. When nil, the repository's
	// include-preloading query is used unfiltered.
	BaseQuery func(c *gin.Context, req Request) (*gorm.DB, error)

	// Authorize checks whether the current actor may touch a fetched entity.
	// It runs on Get and before Update/Delete mutations.
	Authorize func(c *gin.Context, entity *E) error

	// NewEntity maps a create DTO into a fresh entity.
	NewEntity func(c *gin.Context, dto *C) (*E, error)

	// ApplyUpdate maps an edit DTO onto the fetched entity. The entity's ID
	// comes from the URL path and must not be touched.
	ApplyUpdate func(c *gin.Context, dto *U, entity *E) error

	// ToResponse maps an entity into its response DTO.
	ToResponse func(*E) R

	// Persist overrides the update persistence path, e.g. to add an
	// optimistic-concurrency check. When nil, Repository.Update is used.
	Persist func(ctx context.Context, entity *E) error
}

// Resource is a generic request-handling template over a repository-backed
// entity type: one paginated list operation plus get/create/update/delete,
// with lifecycle hooks and tenant scoping supplied per resource.
type Resource[ID comparable, E any, C any, U any, R any] struct {
	repo  Repository[E, ID]
	opts  Options[ID, E, C, U, R]
	hooks Hooks[ID, E, C, U]
}

// NewResource creates a Resource. Panics when repo or a required option is
// missing, since that is a wiring bug.
func NewResource[ID comparable, E any, C any, U any, R any](
	repo Repository[E, ID],
	opts Options[ID, E, C, U, R],
	hooks Hooks[ID, E, C, U],
) *Resource[ID, E, C, U, R] {
	if repo == nil {
		panic("crud.NewResource: repository must not be nil")
	}
	if opts.ParseID == nil {
		panic("crud.NewResource: ParseID must not be nil")
	}
	if opts.EntityID == nil {
		panic("crud.NewResource: EntityID must not be nil")
	}
	if opts.NewEntity == nil {
		panic("crud.NewResource: NewEntity must not be nil")
	}
	if opts.ApplyUpdate == nil {
		panic("crud.NewResource: ApplyUpdate must not be nil")
	}
	if opts.ToResponse == nil {
		panic("crud.NewResource: ToResponse must not be nil")
	}
	return &Resource[ID, E, C, U, R]{repo: repo, opts: opts, hooks: hooks}
}

// Register wires the five REST routes onto the given router group.
func (r *Resource[ID, E, C, U, R]) Register(g *gin.RouterGroup) {
	g.GET("", r.List)
	g.GET("/:id", r.Get)
	g.POST("", r.Create)
	g.PUT("/:id", r.Update)
	g.DELETE("/:id", r.Delete)
}

// List handles the paginated DataTable query.
func (r *Resource[ID, E, C, U, R]) List(c *gin.Context) {
	req := ParseRequest(c)

	base, err := r.baseQuery(c, req)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	result, err := RunQuery(base, QuerySpec[E, R]{
		Request:      req,
		SearchFields: r.opts.SearchFields,
		InitialScope: r.opts.InitialScope,
		SortFields:   r.opts.SortFields,
		DefaultSort:  r.opts.DefaultSort,
		Select:       r.opts.ToResponse,
	})
	if err != nil {
		pkg.Error(c, err)
		return
	}

	// The table widget consumes this envelope verbatim; it is not wrapped in
	// the standard response envelope.
	c.JSON(http.StatusOK, result)
}

// Get handles single fetch by id with navigation includes.
func (r *Resource[ID, E, C, U, R]) Get(c *gin.Context) {
	id, err := r.opts.ParseID(c.Param("id"))
	if err != nil {
		pkg.Error(c, err)
		return
	}

	entity, err := r.repo.GetByID(c.Request.Context(), id, r.opts.Includes...)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	if err := r.authorize(c, entity); err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, r.opts.ToResponse(entity))
}

// Create handles insert: validate, BeforeCreate, map, BeforeCreateEntity,
// persist, AfterCreate. Responds 201 with a Location header for Get.
func (r *Resource[ID, E, C, U, R]) Create(c *gin.Context) {
	var dto C
	if !pkg.BindAndValidate(c, &dto) {
		return
	}

	if err := runHook(r.hooks.BeforeCreate, c, &dto); err != nil {
		pkg.Error(c, err)
		return
	}

	entity, err := r.opts.NewEntity(c, &dto)
	if err != nil {
		pkg.Error(c, hookError(err))
		return
	}

	if err := runHook(r.hooks.BeforeCreateEntity, c, entity); err != nil {
		pkg.Error(c, err)
		return
	}

	if err := r.repo.Create(c.Request.Context(), entity); err != nil {
		pkg.Error(c, err)
		return
	}

	if r.hooks.AfterCreate != nil {
		r.hooks.AfterCreate(c, entity)
	}

	c.Header("Location", fmt.Sprintf("%s/%v", c.Request.URL.Path, r.opts.EntityID(entity)))
	c.JSON(http.StatusCreated, pkg.Response{
		Code:    http.StatusCreated,
		Message: "success",
		Data:    r.opts.ToResponse(entity),
	})
}

// Update handles full replace by id. The identifier always comes from the
// URL path; an id in the body is ignored.
func (r *Resource[ID, E, C, U, R]) Update(c *gin.Context) {
	id, err := r.opts.ParseID(c.Param("id"))
	if err != nil {
		pkg.Error(c, err)
		return
	}

	var dto U
	if !pkg.BindAndValidate(c, &dto) {
		return
	}

	existing, err := r.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	if err := r.authorize(c, existing); err != nil {
		pkg.Error(c, err)
		return
	}

	if r.hooks.BeforeUpdate != nil {
		if err := r.hooks.BeforeUpdate(c, id, &dto, existing); err != nil {
			pkg.Error(c, hookError(err))
			return
		}
	}

	if err := r.opts.ApplyUpdate(c, &dto, existing); err != nil {
		pkg.Error(c, hookError(err))
		return
	}

	if err := runHook(r.hooks.BeforeUpdateEntity, c, existing); err != nil {
		pkg.Error(c, err)
		return
	}

	if err := r.persist(c.Request.Context(), existing); err != nil {
		pkg.Error(c, err)
		return
	}

	if r.hooks.AfterUpdate != nil {
		r.hooks.AfterUpdate(c, existing)
	}

	pkg.Success(c, r.opts.ToResponse(existing))
}

// Delete handles removal by id. Rows are removed physically; repeating the
// call reports not-found.
func (r *Resource[ID, E, C, U, R]) Delete(c *gin.Context) {
	id, err := r.opts.ParseID(c.Param("id"))
	if err != nil {
		pkg.Error(c, err)
		return
	}

	existing, err := r.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	if err := r.authorize(c, existing); err != nil {
		pkg.Error(c, err)
		return
	}

	if r.hooks.BeforeDelete != nil {
		if err := r.hooks.BeforeDelete(c, id, existing); err != nil {
			pkg.Error(c, hookError(err))
			return
		}
	}

	if err := r.repo.Delete(c.Request.Context(), id); err != nil {
		pkg.Error(c, err)
		return
	}

	if r.hooks.AfterDelete != nil {
		r.hooks.AfterDelete(c, existing)
	}

	pkg.Success(c, nil)
}

func (r *Resource[ID, E, C, U, R]) baseQuery(c *gin.Context, req Request) (*gorm.DB, error) {
	if r.opts.BaseQuery != nil {
		return r.opts.BaseQuery(c, req)
	}
	return r.repo.Query(c.Request.Context(), r.opts.Includes...), nil
}

func (r *Resource[ID, E, C, U, R]) authorize(c *gin.Context, entity *E) error {
	if r.opts.Authorize == nil {
		return nil
	}
	return r.opts.Authorize(c, entity)
}

func (r *Resource[ID, E, C, U, R]) persist(ctx context.Context, entity *E) error {
	if r.opts.Persist != nil {
		return r.opts.Persist(ctx, entity)
	}
	return r.repo.Update(ctx, entity)
}

// runHook invokes an optional single-argument hook, normalizing its error.
func runHook[T any](hook func(*gin.Context, *T) error, c *gin.Context, v *T) error {
	if hook == nil {
		return nil
	}
	return hookError(hook(c, v))
}

// hookError normalizes hook rejections: expected business failures travel as
// *domain.AppError; anything else becomes a 400 with the hook's message.
func hookError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return domain.NewAppError(domain.CodeValidation, err.Error(), err)
}
