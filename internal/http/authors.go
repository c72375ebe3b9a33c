package http

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarium/internal/activity"
	"github.com/mrlokans/librarium/internal/database/authors"
	"github.com/mrlokans/librarium/internal/demo"
	"github.com/mrlokans/librarium/internal/entities"
	"github.com/mrlokans/librarium/internal/security"
	"github.com/mrlokans/librarium/internal/session"
)

// AuthorsController serves the author creation form.
type AuthorsController struct {
	authors  AuthorStore
	sessions *session.Manager
	activity *activity.Service
}

func NewAuthorsController(store AuthorStore, sessions *session.Manager, activitySvc *activity.Service) *AuthorsController {
	return &AuthorsController{
		authors:  store,
		sessions: sessions,
		activity: activitySvc,
	}
}

// authorForm carries submitted values back into a re-rendered form.
type authorForm struct {
	Name      string
	BirthDate string
	DeathDate string
}

// AddAuthorPage renders the empty author form.
func (controller *AuthorsController) AddAuthorPage(c *gin.Context) {
	controller.renderForm(c, authorForm{})
}

// AddAuthor validates the submitted form and stores the author. Validation
// failures re-render the form with the submitted values and an error banner;
// success flashes a confirmation and redirects back to the empty form.
func (controller *AuthorsController) AddAuthor(c *gin.Context) {
	form := authorForm{
		Name:      strings.TrimSpace(c.PostForm("name")),
		BirthDate: strings.TrimSpace(c.PostForm("birth_date")),
		DeathDate: strings.TrimSpace(c.PostForm("death_date")),
	}

	if form.Name == "" {
		controller.renderForm(c, form, errorFlash("Author name cannot be empty."))
		return
	}
	if form.BirthDate != "" && !validDate(form.BirthDate) {
		controller.renderForm(c, form, errorFlash("Birth date must be in YYYY-MM-DD format."))
		return
	}
	if form.DeathDate != "" && !validDate(form.DeathDate) {
		controller.renderForm(c, form, errorFlash("Death date must be in YYYY-MM-DD format."))
		return
	}

	author := &entities.Author{
		Name:      form.Name,
		BirthDate: form.BirthDate,
		DeathDate: form.DeathDate,
	}
	if err := controller.authors.Create(author); err != nil {
		switch {
		case errors.Is(err, authors.ErrDuplicateName):
			controller.renderForm(c, form, errorFlash("Author '"+form.Name+"' already exists."))
		case errors.Is(err, authors.ErrEmptyName):
			controller.renderForm(c, form, errorFlash("Author name cannot be empty."))
		default:
			log.Printf("Failed to create author %q: %v", form.Name, err)
			controller.renderForm(c, form, errorFlash("Failed to add author."))
		}
		return
	}

	if controller.activity != nil {
		controller.activity.LogAuthorCreate(author.ID, author.Name)
	}
	if controller.sessions != nil {
		controller.sessions.PutSuccess(c.Request, "Author '"+author.Name+"' added successfully.")
	}
	c.Redirect(http.StatusFound, "/add_author")
}

func (controller *AuthorsController) renderForm(c *gin.Context, form authorForm, inline ...session.Flash) {
	c.HTML(http.StatusOK, "add_author", gin.H{
		"Title":     "Add Author",
		"Form":      form,
		"Flashes":   pageFlashes(c, controller.sessions, inline...),
		"CSRFToken": security.GetCSRFToken(c),
		"DemoMode":  demo.FromContext(c),
	})
}

// errorFlash wraps a message into an error-status flash for inline rendering.
func errorFlash(message string) session.Flash {
	return session.Flash{Status: session.StatusError, Message: message}
}

// validDate reports whether the value is a real date in YYYY-MM-DD form.
func validDate(value string) bool {
	_, err := time.Parse("2006-01-02", value)
	return err == nil
}
