package employee

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"effectif_back_end/internal/cache"
	"effectif_back_end/internal/metrics"
	"effectif_back_end/internal/models"
	"effectif_back_end/internal/services"
	"effectif_back_end/internal/store"
)

// Injectés au démarrage par routes.RegisterRoutes
var (
	Store   store.EmployeeStore
	Objects store.ObjectStore
)

// Champs de tri autorisés sur la liste
var sortableFields = map[string]bool{
	"name":            true,
	"emp_id":          true,
	"email":           true,
	"designation":     true,
	"date_of_joining": true,
}

// Étapes de la séquence de création, dans l'ordre d'exécution
const (
	stepInsertRecord = "fiche_employe"
	stepStoragePath  = "dossier_stockage"
	stepUpload       = "upload_photo"
	stepDocument     = "document"
)

// runCreationSequence exécute les trois étapes de création. Aucune étape déjà
// validée n'est annulée en cas d'échec : l'appelant reçoit un
// PartialCreationError décrivant ce qui a persisté.
func runCreationSequence(ctx context.Context, st store.EmployeeStore, obj store.ObjectStore,
	emp models.Employee, picture *multipart.FileHeader, uploadedBy string) (*models.EmployeeDocument, error) {

	// 1. Création de la fiche
	if err := st.Insert(ctx, emp); err != nil {
		return nil, fmt.Errorf("erreur création fiche employé: %w", err)
	}
	completed := []string{stepInsertRecord}

	// 2. Référence du dossier dans storage_paths
	folderPath := strings.ReplaceAll(emp.EmpID, "/", "_")
	path := models.StoragePath{
		EmpID:      emp.EmpID,
		FolderPath: folderPath,
		FolderType: "employee",
	}
	if err := st.InsertStoragePath(ctx, path); err != nil {
		return nil, &models.PartialCreationError{
			CompletedSteps: completed,
			FailedStep:     stepStoragePath,
			Err:            err,
		}
	}
	completed = append(completed, stepStoragePath)

	// 3. Upload de la photo de profil si fournie
	if picture == nil {
		return nil, nil
	}

	f, err := picture.Open()
	if err != nil {
		return nil, &models.PartialCreationError{
			CompletedSteps: completed,
			FailedStep:     stepUpload,
			Err:            err,
		}
	}
	defer f.Close()

	fileExt := strings.TrimPrefix(filepath.Ext(picture.Filename), ".")
	filePath := fmt.Sprintf("%s/profile_picture.%s", folderPath, fileExt)

	if err := obj.Upload(ctx, filePath, f, picture.Size, picture.Header.Get("Content-Type")); err != nil {
		return nil, &models.PartialCreationError{
			CompletedSteps: completed,
			FailedStep:     stepUpload,
			Err:            err,
		}
	}
	completed = append(completed, stepUpload)

	doc := models.EmployeeDocument{
		ID:         gocql.UUID(uuid.New()),
		EmpID:      emp.EmpID,
		FileName:   "profile_picture",
		FilePath:   filePath,
		FileType:   fileExt,
		UploadedBy: uploadedBy,
		FileURL:    obj.PublicURL(filePath),
		UploadedAt: time.Now(),
	}
	if err := st.InsertDocument(ctx, doc); err != nil {
		return nil, &models.PartialCreationError{
			CompletedSteps: completed,
			FailedStep:     stepDocument,
			Err:            err,
		}
	}

	return &doc, nil
}

// employeeFromForm lit les champs du formulaire multipart
func employeeFromForm(c *gin.Context) models.Employee {
	return models.Employee{
		EmpID:              c.PostForm("emp_id"),
		Name:               c.PostForm("name"),
		Designation:        c.PostForm("designation"),
		DateOfJoining:      c.PostForm("date_of_joining"),
		PhoneNo:            c.PostForm("phone_no"),
		Email:              c.PostForm("email"),
		Address:            c.PostForm("address"),
		DOB:                c.PostForm("dob"),
		EmergencyContactNo: c.PostForm("emergency_contact_no"),
	}
}

// CreateEmployee crée une fiche en trois étapes : insertion, enregistrement
// du dossier de stockage, puis upload optionnel de la photo + document.
func CreateEmployee(c *gin.Context) {
	emp := employeeFromForm(c)

	// Champs requis, vérifiés avant tout appel réseau
	if emp.EmpID == "" || emp.Name == "" || emp.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Les champs emp_id, name et email sont obligatoires"})
		return
	}

	picture, err := c.FormFile("profile_picture")
	if err != nil {
		picture = nil // photo optionnelle
	}

	uploadedBy := c.GetString("email")
	if uploadedBy == "" {
		uploadedBy = "system"
	}

	ctx := c.Request.Context()
	doc, err := runCreationSequence(ctx, Store, Objects, emp, picture, uploadedBy)
	if err != nil {
		var partial *models.PartialCreationError
		if errors.As(err, &partial) {
			// Les étapes déjà validées persistent : fenêtre d'incohérence
			// connue, signalée à l'opérateur, jamais annulée automatiquement.
			metrics.PartialCreations.Inc()
			metrics.EmployeeOps.WithLabelValues("create", "partial").Inc()
			cache.InvalidateEmployeeLists(context.Background())
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":           "Création partielle : " + partial.Error(),
				"completed_steps": partial.CompletedSteps,
				"failed_step":     partial.FailedStep,
			})
			return
		}
		metrics.EmployeeOps.WithLabelValues("create", "error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	metrics.EmployeeOps.WithLabelValues("create", "applied").Inc()
	cache.InvalidateEmployeeLists(context.Background())

	// 🔄 Indexation Elasticsearch
	go services.IndexEmployee(emp)

	resp := gin.H{"message": "Employé ajouté avec succès", "employee": emp}
	if doc != nil {
		resp["document"] = doc
	}
	c.JSON(http.StatusCreated, resp)
}

// GetEmployees liste les fiches avec tri et filtre en mémoire : les listes
// restent petites, ScyllaDB ne triant pas sur colonne arbitraire.
func GetEmployees(c *gin.Context) {
	sortField := c.DefaultQuery("sort", "name")
	direction := c.DefaultQuery("direction", "asc")
	search := c.Query("search")

	if !sortableFields[sortField] {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Champ de tri inconnu: %s", sortField)})
		return
	}
	if direction != "asc" && direction != "desc" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "direction doit valoir asc ou desc"})
		return
	}

	ctx := c.Request.Context()

	// Cache uniquement pour la liste complète
	if search == "" {
		if cached, ok := cache.GetEmployeeList(ctx, sortField, direction); ok {
			c.JSON(http.StatusOK, gin.H{"employees": cached})
			return
		}
	}

	employees, err := Store.List(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture employés: " + err.Error()})
		return
	}

	if search != "" {
		employees = filterEmployees(employees, search)
	}
	sortEmployees(employees, sortField, direction)

	// Normalisé AVANT la mise en cache : un hit doit renvoyer [] comme une
	// lecture fraîche, jamais null.
	if employees == nil {
		employees = []models.Employee{}
	}

	if search == "" {
		cache.SetEmployeeList(ctx, sortField, direction, employees)
	}

	c.JSON(http.StatusOK, gin.H{"employees": employees})
}

// filterEmployees garde les fiches dont un champ affiché contient le terme
func filterEmployees(employees []models.Employee, term string) []models.Employee {
	term = strings.ToLower(term)
	var out []models.Employee
	for _, e := range employees {
		if strings.Contains(strings.ToLower(e.Name), term) ||
			strings.Contains(strings.ToLower(e.EmpID), term) ||
			strings.Contains(strings.ToLower(e.Email), term) ||
			strings.Contains(strings.ToLower(e.Designation), term) {
			out = append(out, e)
		}
	}
	return out
}

// sortEmployees trie en place sur un champ autorisé
func sortEmployees(employees []models.Employee, field, direction string) {
	key := func(e models.Employee) string {
		switch field {
		case "emp_id":
			return e.EmpID
		case "email":
			return e.Email
		case "designation":
			return e.Designation
		case "date_of_joining":
			return e.DateOfJoining
		default:
			return e.Name
		}
	}

	sort.SliceStable(employees, func(i, j int) bool {
		a := strings.ToLower(key(employees[i]))
		b := strings.ToLower(key(employees[j]))
		if direction == "desc" {
			return a > b
		}
		return a < b
	})
}

// UpdateEmployee remplace la fiche entière (pas de diff champ à champ côté
// fiche : l'emp_id est la clé, le reste est écrasé tel quel).
func UpdateEmployee(c *gin.Context) {
	empID := c.Param("emp_id")

	var emp models.Employee
	if err := c.ShouldBindJSON(&emp); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	emp.EmpID = empID

	if emp.Name == "" || emp.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Les champs name et email sont obligatoires"})
		return
	}

	if err := Store.Update(c.Request.Context(), emp); err != nil {
		metrics.EmployeeOps.WithLabelValues("update", "error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour employé: " + err.Error()})
		return
	}

	metrics.EmployeeOps.WithLabelValues("update", "applied").Inc()
	cache.InvalidateEmployeeLists(context.Background())
	go services.IndexEmployee(emp)

	c.JSON(http.StatusOK, gin.H{"message": "Employé mis à jour avec succès", "employee": emp})
}

// DeleteEmployee supprime la fiche par identifiant
func DeleteEmployee(c *gin.Context) {
	empID := c.Param("emp_id")

	if err := Store.Delete(c.Request.Context(), empID); err != nil {
		metrics.EmployeeOps.WithLabelValues("delete", "error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression employé: " + err.Error()})
		return
	}

	metrics.EmployeeOps.WithLabelValues("delete", "applied").Inc()
	cache.InvalidateEmployeeLists(context.Background())
	go services.RemoveEmployeeIndex(empID)

	c.JSON(http.StatusOK, gin.H{"message": "Employé supprimé avec succès"})
}

// SearchEmployees interroge l'index Elasticsearch (recherche plein texte)
func SearchEmployees(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le paramètre 'q' est requis"})
		return
	}

	results, err := services.SearchEmployees(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur recherche: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}
