package employee

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"effectif_back_end/internal/models"
	"effectif_back_end/internal/utils"
)

func findEmployee(c *gin.Context, empID string) (models.Employee, bool) {
	employees, err := Store.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture employés: " + err.Error()})
		return models.Employee{}, false
	}
	for _, e := range employees {
		if e.EmpID == empID {
			return e, true
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "Employé introuvable"})
	return models.Employee{}, false
}

// === GET /api/employees/:emp_id/badge ===

// GetBadge renvoie le QR vCard du badge de l'employé (base64, prêt pour <img>)
func GetBadge(c *gin.Context) {
	emp, ok := findEmployee(c, c.Param("emp_id"))
	if !ok {
		return
	}

	qr, err := utils.GenerateBadgeQR(emp)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération badge: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"emp_id": emp.EmpID, "badge_qr": qr})
}

// === GET /api/employees/:emp_id/profile.pdf ===

// ExportProfilePDF imprime la page profil du front en PDF
func ExportProfilePDF(c *gin.Context) {
	emp, ok := findEmployee(c, c.Param("emp_id"))
	if !ok {
		return
	}

	pdf, err := utils.RenderEmployeeProfilePDF(utils.GetFrontendProfileBaseURL(), emp.EmpID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération PDF: " + err.Error()})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="profil_`+emp.EmpID+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
