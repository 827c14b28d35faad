package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/openshelf/locallibrary/internal/auth"
)

// Controller serves the generic admin pages for every registered model.
type Controller struct {
	db       *gorm.DB
	registry *Registry
}

// NewController creates an admin controller over a registry.
func NewController(db *gorm.DB, registry *Registry) *Controller {
	return &Controller{db: db, registry: registry}
}

// RegisterRoutes mounts the admin surface under /admin. The provided
// middleware (typically a role gate) is applied to the whole group.
func (ctrl *Controller) RegisterRoutes(router *gin.Engine, guards ...gin.HandlerFunc) {
	group := router.Group("/admin", guards...)
	group.GET("", ctrl.Index)
	group.GET("/:slug", ctrl.List)
	group.GET("/:slug/new", ctrl.NewForm)
	group.POST("/:slug/new", ctrl.Create)
	group.GET("/:slug/:id", ctrl.EditForm)
	group.POST("/:slug/:id", ctrl.Update)
	group.POST("/:slug/:id/delete", ctrl.Delete)
}

// lookup resolves the model registration addressed by the :slug parameter,
// writing the 404 itself when the slug is unknown.
func (ctrl *Controller) lookup(c *gin.Context) (*ModelAdmin, bool) {
	model, ok := ctrl.registry.Lookup(c.Param("slug"))
	if !ok {
		c.String(http.StatusNotFound, "Unknown admin section")
		return nil, false
	}
	return model, true
}

// Index lists the registered models.
func (ctrl *Controller) Index(c *gin.Context) {
	type section struct {
		Name string
		URL  string
	}
	sections := make([]section, 0)
	for _, m := range ctrl.registry.All() {
		sections = append(sections, section{Name: m.Plural, URL: "/admin/" + m.Slug})
	}

	c.HTML(http.StatusOK, "admin_index", gin.H{
		"Title":    "Site administration",
		"Sections": sections,
		"Username": auth.GetUsername(c),
	})
}

// listRow is one rendered row of the admin list table.
type listRow struct {
	ID    string
	Cells []string
}

// filterView is one filter with its options rendered for the template.
type filterView struct {
	Name     string
	Label    string
	Selected string
	Options  []Option
}

// List renders the filtered list table for one model.
func (ctrl *Controller) List(c *gin.Context) {
	model, ok := ctrl.lookup(c)
	if !ok {
		return
	}

	filters := make(map[string]string)
	filterViews := make([]filterView, 0, len(model.ListFilters))
	for _, f := range model.ListFilters {
		value := c.Query(f.Name)
		filters[f.Name] = value
		filterViews = append(filterViews, filterView{
			Name:     f.Name,
			Label:    f.Label,
			Selected: value,
			Options:  f.Options(ctrl.db),
		})
	}

	objects, err := model.List(ctrl.db, filters)
	if err != nil {
		c.String(http.StatusInternalServerError, "Error loading records: %s", err.Error())
		return
	}

	headers := make([]string, 0, len(model.ListDisplay))
	for _, col := range model.ListDisplay {
		headers = append(headers, col.Title)
	}

	rows := make([]listRow, 0, len(objects))
	for _, obj := range objects {
		row := listRow{ID: model.ID(obj)}
		for _, col := range model.ListDisplay {
			row.Cells = append(row.Cells, col.Value(obj))
		}
		rows = append(rows, row)
	}

	c.HTML(http.StatusOK, "admin_list", gin.H{
		"Title":     model.Plural,
		"Model":     model.Name,
		"Slug":      model.Slug,
		"Headers":   headers,
		"Rows":      rows,
		"Filters":   filterViews,
		"Username":  auth.GetUsername(c),
		"CSRFToken": auth.GetCSRFToken(c),
	})
}

// fieldView is one form input rendered for the template.
type fieldView struct {
	Name     string
	Label    string
	Type     string
	Required bool
	Value    string
	Options  []Option
}

// inlineView is one inline child table rendered for the template.
type inlineView struct {
	Title string
	Rows  []InlineRow
}

func (ctrl *Controller) renderForm(c *gin.Context, model *ModelAdmin, obj any, isNew bool, errMessage string, submitted map[string]string) {
	fields := make([]fieldView, 0, len(model.Fields))
	for _, f := range model.Fields {
		value := f.Get(obj)
		if submitted != nil {
			value = submitted[f.Name]
		}
		fv := fieldView{
			Name:     f.Name,
			Label:    f.Label,
			Type:     f.Type,
			Required: f.Required,
			Value:    value,
		}
		if f.Options != nil {
			fv.Options = f.Options(ctrl.db)
		}
		fields = append(fields, fv)
	}

	var inlines []inlineView
	if !isNew {
		for _, inline := range model.Inlines {
			inlines = append(inlines, inlineView{Title: inline.Title, Rows: inline.Rows(obj)})
		}
	}

	action := "/admin/" + model.Slug + "/new"
	if !isNew {
		action = "/admin/" + model.Slug + "/" + model.ID(obj)
	}

	title := "New " + model.Name
	if !isNew {
		title = "Edit " + model.Name
	}

	c.HTML(http.StatusOK, "admin_form", gin.H{
		"Title":     title,
		"Model":     model.Name,
		"Slug":      model.Slug,
		"Action":    action,
		"Fields":    fields,
		"Inlines":   inlines,
		"IsNew":     isNew,
		"ObjectID":  modelID(model, obj, isNew),
		"Error":     errMessage,
		"Username":  auth.GetUsername(c),
		"CSRFToken": auth.GetCSRFToken(c),
	})
}

func modelID(model *ModelAdmin, obj any, isNew bool) string {
	if isNew {
		return ""
	}
	return model.ID(obj)
}

// NewForm renders an empty form for the model.
func (ctrl *Controller) NewForm(c *gin.Context) {
	model, ok := ctrl.lookup(c)
	if !ok {
		return
	}
	ctrl.renderForm(c, model, model.New(), true, "", nil)
}

// applyFields copies submitted values into the object through the field
// setters, returning the first failure.
func (ctrl *Controller) applyFields(c *gin.Context, model *ModelAdmin, obj any) (map[string]string, error) {
	submitted := make(map[string]string, len(model.Fields))
	for _, f := range model.Fields {
		value := c.PostForm(f.Name)
		submitted[f.Name] = value
		if f.Required && value == "" {
			return submitted, &fieldError{field: f.Label, message: "is required"}
		}
		if err := f.Set(ctrl.db, obj, value); err != nil {
			return submitted, &fieldError{field: f.Label, message: err.Error()}
		}
	}
	return submitted, nil
}

type fieldError struct {
	field   string
	message string
}

func (e *fieldError) Error() string { return e.field + " " + e.message }

// Create stores a new record.
func (ctrl *Controller) Create(c *gin.Context) {
	model, ok := ctrl.lookup(c)
	if !ok {
		return
	}

	obj := model.New()
	submitted, err := ctrl.applyFields(c, model, obj)
	if err != nil {
		ctrl.renderForm(c, model, obj, true, err.Error(), submitted)
		return
	}

	if err := model.Save(ctrl.db, obj); err != nil {
		ctrl.renderForm(c, model, obj, true, "Save failed: "+err.Error(), submitted)
		return
	}

	c.Redirect(http.StatusSeeOther, "/admin/"+model.Slug)
}

// EditForm renders the form pre-filled with an existing record.
func (ctrl *Controller) EditForm(c *gin.Context) {
	model, ok := ctrl.lookup(c)
	if !ok {
		return
	}

	obj, err := model.Get(ctrl.db, c.Param("id"))
	if err != nil {
		c.String(http.StatusNotFound, "%s not found", model.Name)
		return
	}

	ctrl.renderForm(c, model, obj, false, "", nil)
}

// Update applies submitted values to an existing record.
func (ctrl *Controller) Update(c *gin.Context) {
	model, ok := ctrl.lookup(c)
	if !ok {
		return
	}

	obj, err := model.Get(ctrl.db, c.Param("id"))
	if err != nil {
		c.String(http.StatusNotFound, "%s not found", model.Name)
		return
	}

	submitted, err := ctrl.applyFields(c, model, obj)
	if err != nil {
		ctrl.renderForm(c, model, obj, false, err.Error(), submitted)
		return
	}

	if err := model.Save(ctrl.db, obj); err != nil {
		ctrl.renderForm(c, model, obj, false, "Save failed: "+err.Error(), submitted)
		return
	}

	c.Redirect(http.StatusSeeOther, "/admin/"+model.Slug)
}

// Delete removes a record and returns to the model list.
func (ctrl *Controller) Delete(c *gin.Context) {
	model, ok := ctrl.lookup(c)
	if !ok {
		return
	}

	if _, err := model.Get(ctrl.db, c.Param("id")); err != nil {
		c.String(http.StatusNotFound, "%s not found", model.Name)
		return
	}

	if err := model.Delete(ctrl.db, c.Param("id")); err != nil {
		c.String(http.StatusInternalServerError, "Delete failed: %s", err.Error())
		return
	}

	c.Redirect(http.StatusSeeOther, "/admin/"+model.Slug)
}
