package employee

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"effectif_back_end/internal/models"
)

// === POST /api/employees/:emp_id/picture ===

// UploadProfilePicture remplace la photo de profil d'un employé existant.
// L'ancien objet n'est pas supprimé : le document le plus récent fait foi.
func UploadProfilePicture(c *gin.Context) {
	empID := c.Param("emp_id")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Aucun fichier reçu"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur ouverture fichier"})
		return
	}
	defer f.Close()

	folderPath := strings.ReplaceAll(empID, "/", "_")
	fileExt := strings.TrimPrefix(filepath.Ext(fileHeader.Filename), ".")
	objectName := fmt.Sprintf("%s/profile_picture_%d.%s", folderPath, time.Now().Unix(), fileExt)

	ctx := c.Request.Context()
	if err := Objects.Upload(ctx, objectName, f, fileHeader.Size, fileHeader.Header.Get("Content-Type")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur upload MinIO", "details": err.Error()})
		return
	}

	uploadedBy := c.GetString("email")
	if uploadedBy == "" {
		uploadedBy = "system"
	}

	doc := models.EmployeeDocument{
		ID:         gocql.UUID(uuid.New()),
		EmpID:      empID,
		FileName:   "profile_picture",
		FilePath:   objectName,
		FileType:   fileExt,
		UploadedBy: uploadedBy,
		FileURL:    Objects.PublicURL(objectName),
		UploadedAt: time.Now(),
	}
	if err := Store.InsertDocument(ctx, doc); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur enregistrement document", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Photo de profil uploadée avec succès",
		"document": doc,
	})
}

// === GET /api/employees/:emp_id/documents ===

func GetDocuments(c *gin.Context) {
	empID := c.Param("emp_id")

	docs, err := Store.ListDocuments(c.Request.Context(), empID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture documents: " + err.Error()})
		return
	}

	if len(docs) == 0 {
		c.JSON(http.StatusOK, gin.H{"documents": []models.EmployeeDocument{}, "message": "Aucun document pour cet employé"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

// === GET /api/employees/:emp_id/documents/:doc_id/url ===

// GetDocumentSignedURL renvoie une URL signée temporaire vers le fichier
func GetDocumentSignedURL(c *gin.Context) {
	empID := c.Param("emp_id")
	docID := c.Param("doc_id")

	docs, err := Store.ListDocuments(c.Request.Context(), empID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture documents: " + err.Error()})
		return
	}

	for _, d := range docs {
		if d.ID.String() == docID {
			url, err := Objects.PresignedURL(c.Request.Context(), d.FilePath)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération URL signée"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"url": url, "expires_in": 3600})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "Document introuvable"})
}

// === DELETE /api/employees/:emp_id/documents/:doc_id ===

func DeleteDocument(c *gin.Context) {
	empID := c.Param("emp_id")
	docID := c.Param("doc_id")

	ctx := c.Request.Context()
	docs, err := Store.ListDocuments(ctx, empID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture documents: " + err.Error()})
		return
	}

	for _, d := range docs {
		if d.ID.String() == docID {
			// L'objet d'abord, la référence ensuite : une référence sans
			// objet serait une fiche cassée côté console.
			if err := Objects.Remove(ctx, d.FilePath); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression MinIO", "details": err.Error()})
				return
			}
			if err := Store.DeleteDocument(ctx, empID, docID); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression document", "details": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"message": "Document supprimé avec succès", "file_url": d.FileURL})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "Document introuvable"})
}
