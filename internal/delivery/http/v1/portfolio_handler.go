package v1

import (
	"net/http"
	"strconv"

	"portfolio-backend/internal/content"
	"portfolio-backend/internal/delivery/http/response"
	"portfolio-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type PortfolioHandler struct {
	portfolio *content.Portfolio
}

// ProjectsResponse is a filtered project list with the available categories
type ProjectsResponse struct {
	Category   string            `json:"category"`
	Categories []string          `json:"categories"`
	Projects   []content.Project `json:"projects"`
}

func NewPortfolioHandler(public *gin.RouterGroup, portfolio *content.Portfolio) {
	handler := &PortfolioHandler{portfolio: portfolio}

	public.GET("/portfolio", handler.GetPortfolio)
	public.GET("/portfolio/projects", handler.ListProjects)
	public.GET("/portfolio/projects/:id", handler.GetProject)
}

// GetPortfolio godoc
// @Summary      Portfolio Content
// @Description  Profile, about, skills, experience, education, projects and contact details.
// @Tags         portfolio
// @Produce      json
// @Success      200  {object}  response.Response{data=content.Portfolio}
// @Router       /portfolio [get]
func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	response.Success(c, http.StatusOK, "Portfolio", h.portfolio)
}

// ListProjects godoc
// @Summary      List Projects
// @Description  Projects filtered by category. "All" or no category returns every project.
// @Tags         portfolio
// @Produce      json
// @Param        category  query     string  false  "Project category"
// @Success      200       {object}  response.Response{data=ProjectsResponse}
// @Router       /portfolio/projects [get]
func (h *PortfolioHandler) ListProjects(c *gin.Context) {
	category := c.DefaultQuery("category", content.CategoryAll)
	response.Success(c, http.StatusOK, "Projects", ProjectsResponse{
		Category:   category,
		Categories: h.portfolio.Categories(),
		Projects:   h.portfolio.ProjectsIn(category),
	})
}

// GetProject godoc
// @Summary      Project Details
// @Tags         portfolio
// @Produce      json
// @Param        id   path      int  true  "Project ID"
// @Success      200  {object}  response.Response{data=content.Project}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /portfolio/projects/{id} [get]
func (h *PortfolioHandler) GetProject(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Error(apperror.BadRequest("Invalid project id"))
		return
	}

	project, ok := h.portfolio.Project(id)
	if !ok {
		c.Error(apperror.NotFound("Project not found"))
		return
	}
	response.Success(c, http.StatusOK, "Project", project)
}
