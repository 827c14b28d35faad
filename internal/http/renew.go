package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/locallibrary/internal/database/instances"
	"github.com/openshelf/locallibrary/internal/forms"
)

// RenewController orchestrates the loan renewal workflow: fetch the copy,
// validate the submitted date, persist the new due-back date. The route is
// gated by the catalog.can_mark_returned permission, so by the time a request
// reaches these handlers the caller is already authorized.
type RenewController struct {
	instances *instances.Repository

	// now is the clock used to anchor the date-range validation.
	// Overridable in tests.
	now func() time.Time
}

// NewRenewController creates a new renewal controller.
func NewRenewController(instancesRepo *instances.Repository) *RenewController {
	return &RenewController{
		instances: instancesRepo,
		now:       time.Now,
	}
}

// RenewForm handles GET: show the renewal form pre-filled with the proposed
// date of today plus three weeks.
func (controller *RenewController) RenewForm(c *gin.Context) {
	inst, err := controller.instances.GetByID(c.Param("id"))
	if err != nil {
		c.String(http.StatusNotFound, "Book copy not found")
		return
	}

	proposed := forms.DefaultRenewalDate(controller.now())

	c.HTML(http.StatusOK, "book_renew", mergeContext(c, gin.H{
		"Title":       "Renew: " + inst.Book.Title,
		"Instance":    inst,
		"RenewalDate": proposed.Format(forms.RenewalDateLayout),
	}))
}

// Renew handles POST: validate the submitted date and apply it. Validation
// failures re-present the form with the submitted value and per-rule messages;
// nothing is persisted. On success the copy's due-back date is updated and the
// caller is sent back to the catalog home.
func (controller *RenewController) Renew(c *gin.Context) {
	inst, err := controller.instances.GetByID(c.Param("id"))
	if err != nil {
		c.String(http.StatusNotFound, "Book copy not found")
		return
	}

	submitted := c.PostForm("renewal_date")

	form, err := forms.ParseRenewalDate(submitted)
	if err != nil {
		controller.rerender(c, inst.ID, submitted, []forms.FieldError{
			{Field: "renewal_date", Message: err.Error()},
		})
		return
	}

	if errs := form.Validate(controller.now()); len(errs) > 0 {
		controller.rerender(c, inst.ID, submitted, errs)
		return
	}

	if err := controller.instances.UpdateDueBack(inst.ID, form.RenewalDate); err != nil {
		c.String(http.StatusInternalServerError, "Error saving renewal: %s", err.Error())
		return
	}

	c.Redirect(http.StatusSeeOther, "/")
}

// rerender shows the form again with the rejected input preserved.
func (controller *RenewController) rerender(c *gin.Context, instanceID, submitted string, errs []forms.FieldError) {
	inst, err := controller.instances.GetByID(instanceID)
	if err != nil {
		c.String(http.StatusNotFound, "Book copy not found")
		return
	}

	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		messages = append(messages, e.Message)
	}

	c.HTML(http.StatusOK, "book_renew", mergeContext(c, gin.H{
		"Title":       "Renew: " + inst.Book.Title,
		"Instance":    inst,
		"RenewalDate": submitted,
		"Errors":      messages,
	}))
}
