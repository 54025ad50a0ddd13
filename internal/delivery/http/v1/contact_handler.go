package v1

import (
	"errors"
	"net/http"

	"portfolio-backend/internal/delivery/http/response"
	"portfolio-backend/internal/domain"
	"portfolio-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// ContactSessionCookie binds a browser to its contact form instance
	ContactSessionCookie = "contact_session"
	contactSessionMaxAge = 60 * 60 * 24
)

type ContactHandler struct {
	contactUC    domain.ContactUsecase
	secureCookie bool
}

// ContactConfigResponse tells the frontend whether the form can be used
type ContactConfigResponse struct {
	Configured           bool `json:"configured"`
	FeedbackClearSeconds int  `json:"feedback_clear_seconds"`
}

// ValidateContactResponse carries per-field messages for inline display
type ValidateContactResponse struct {
	Valid  bool                             `json:"valid"`
	Errors map[string]domain.FieldViolation `json:"errors,omitempty"`
}

// NewContactHandler registers the contact routes (public, no auth required).
// submitLimit throttles POST /contact only.
func NewContactHandler(public *gin.RouterGroup, contactUC domain.ContactUsecase, submitLimit gin.HandlerFunc, secureCookie bool) {
	handler := &ContactHandler{
		contactUC:    contactUC,
		secureCookie: secureCookie,
	}

	submit := []gin.HandlerFunc{handler.SubmitContact}
	if submitLimit != nil {
		submit = append([]gin.HandlerFunc{submitLimit}, submit...)
	}

	public.POST("/contact", submit...)
	public.GET("/contact/config", handler.GetConfig)
	public.POST("/contact/validate", handler.ValidateContact)
	public.GET("/contact/feedback", handler.GetFeedback)
	public.DELETE("/contact/session", handler.DisposeSession)
}

// GetConfig godoc
// @Summary      Contact Form Availability
// @Description  Reports whether the relay is configured and how long feedback stays visible.
// @Tags         contact
// @Produce      json
// @Success      200  {object}  response.Response{data=ContactConfigResponse}
// @Router       /contact/config [get]
func (h *ContactHandler) GetConfig(c *gin.Context) {
	response.Success(c, http.StatusOK, "Contact configuration", ContactConfigResponse{
		Configured:           h.contactUC.Configured(),
		FeedbackClearSeconds: int(h.contactUC.FeedbackClearDelay().Seconds()),
	})
}

// ValidateContact godoc
// @Summary      Validate Contact Form
// @Description  Checks the four fields without sending anything.
// @Tags         contact
// @Accept       json
// @Produce      json
// @Param        contact  body      domain.ContactRequest  true  "Contact Form Data"
// @Success      200      {object}  response.Response{data=ValidateContactResponse}
// @Failure      400      {object}  response.Response
// @Router       /contact/validate [post]
func (h *ContactHandler) ValidateContact(c *gin.Context) {
	var req domain.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	result := h.contactUC.Validate(req)
	response.Success(c, http.StatusOK, "Validation complete", ValidateContactResponse{
		Valid:  result.Valid(),
		Errors: result.Errors,
	})
}

// SubmitContact godoc
// @Summary      Submit Contact Form
// @Description  Validates the fields and relays them by email. One submission per session may be in flight.
// @Tags         contact
// @Accept       json
// @Produce      json
// @Param        contact  body      domain.ContactRequest  true  "Contact Form Data"
// @Success      200      {object}  response.Response{data=domain.ContactOutcome}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Failure      429      {object}  response.Response
// @Failure      500      {object}  response.Response
// @Failure      503      {object}  response.Response
// @Router       /contact [post]
func (h *ContactHandler) SubmitContact(c *gin.Context) {
	var req domain.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	sessionID := h.session(c, true)
	outcome, err := h.contactUC.Submit(c.Request.Context(), sessionID, req)
	if err != nil {
		c.Error(submitError(err, outcome))
		return
	}

	response.Success(c, http.StatusOK, outcome.Toast, outcome)
}

// GetFeedback godoc
// @Summary      Contact Form Feedback
// @Description  Current feedback state of this session's form. Success and failure revert to idle after the clear delay.
// @Tags         contact
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.ContactFeedback}
// @Router       /contact/feedback [get]
func (h *ContactHandler) GetFeedback(c *gin.Context) {
	feedback := h.contactUC.Feedback(h.session(c, false))
	response.Success(c, http.StatusOK, "Contact feedback", feedback)
}

// DisposeSession godoc
// @Summary      Close Contact Form
// @Description  Tears down this session's form instance and cancels its pending timers.
// @Tags         contact
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /contact/session [delete]
func (h *ContactHandler) DisposeSession(c *gin.Context) {
	if sessionID := h.session(c, false); sessionID != "" {
		h.contactUC.Dispose(sessionID)
	}
	c.SetSameSite(h.sameSite())
	c.SetCookie(ContactSessionCookie, "", -1, "/", "", h.secureCookie, true)
	response.Success(c, http.StatusOK, "Contact form closed", nil)
}

// session returns the caller's form session id, issuing one when create is set
func (h *ContactHandler) session(c *gin.Context, create bool) string {
	if id, err := c.Cookie(ContactSessionCookie); err == nil {
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
	}
	if !create {
		return ""
	}

	id := uuid.NewString()
	c.SetSameSite(h.sameSite())
	c.SetCookie(ContactSessionCookie, id, contactSessionMaxAge, "/", "", h.secureCookie, true)
	return id
}

// sameSite is None in production where the frontend lives on another origin
func (h *ContactHandler) sameSite() http.SameSite {
	if h.secureCookie {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

func submitError(err error, outcome *domain.ContactOutcome) *apperror.AppError {
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return apperror.Unprocessable("Please correct the highlighted fields", validationErr.Result.Errors)
	case errors.Is(err, domain.ErrSubmissionInFlight):
		return apperror.Conflict("Your message is already being sent")
	case errors.Is(err, domain.ErrFormDisposed):
		return apperror.Conflict("The contact form was closed before the message was sent")
	case errors.Is(err, domain.ErrNotConfigured):
		return apperror.Unavailable(domain.ToastNotConfigured, err).WithDetails(outcome)
	default:
		return apperror.New(http.StatusInternalServerError, domain.ToastFailed, err).WithDetails(outcome)
	}
}
