package v1

import (
	"net/http"
	"strconv"

	"portfolio-backend/internal/delivery/http/response"
	"portfolio-backend/internal/domain"
	"portfolio-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

const defaultAttemptsLimit = 50

type AdminHandler struct {
	contactUC domain.ContactUsecase
}

func NewAdminHandler(protected *gin.RouterGroup, contactUC domain.ContactUsecase) {
	handler := &AdminHandler{contactUC: contactUC}

	admin := protected.Group("/admin")
	{
		admin.GET("/contact/attempts", handler.ListContactAttempts)
	}
}

// ListContactAttempts godoc
// @Summary      List contact attempts
// @Description  Returns the most recent contact form attempts. Message content is never stored.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Max records (1-200)"
// @Success      200    {object}  response.Response{data=[]domain.ContactAttempt}
// @Failure      400    {object}  response.Response
// @Failure      401    {object}  response.Response
// @Failure      403    {object}  response.Response
// @Router       /admin/contact/attempts [get]
func (h *AdminHandler) ListContactAttempts(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultAttemptsLimit)))
	if err != nil || limit < 1 {
		c.Error(apperror.BadRequest("limit must be a positive integer"))
		return
	}

	attempts, err := h.contactUC.RecentAttempts(c.Request.Context(), limit)
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}
	response.Success(c, http.StatusOK, "Contact attempts", attempts)
}
