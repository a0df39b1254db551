package utils

import (
	"encoding/base64"
	"fmt"

	"github.com/skip2/go-qrcode"

	"effectif_back_end/internal/models"
)

// GenerateBadgeQR encode la vCard d'un employé en QR prêt à imprimer sur un
// badge, renvoyé en base64 pour un <img src="...">.
func GenerateBadgeQR(e models.Employee) (string, error) {
	if e.EmpID == "" {
		return "", fmt.Errorf("emp_id requis pour générer un badge")
	}

	vcard := fmt.Sprintf(`BEGIN:VCARD
VERSION:3.0
FN:%s
TITLE:%s
EMAIL:%s
TEL:%s
NOTE:ID %s
END:VCARD`, e.Name, e.Designation, e.Email, e.PhoneNo, e.EmpID)

	png, err := qrcode.Encode(vcard, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
