package utils

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// RenderEmployeeProfilePDF charge la page profil du front côté serveur et
// l'imprime en PDF (export RH).
// frontendURL doit ressembler à: http://localhost:3000/employees/profile
func RenderEmployeeProfilePDF(frontendURL, empID string) ([]byte, error) {
	q := url.Values{}
	q.Set("emp_id", empID)
	q.Set("print", "1")

	fullURL := fmt.Sprintf("%s?%s", frontendURL, q.Encode())

	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	// timeout pour éviter de bloquer
	ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var pdfBuf []byte

	err := chromedp.Run(ctx,
		chromedp.Navigate(fullURL),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}

	return pdfBuf, nil
}

// GetFrontendProfileBaseURL récupère l'URL de la page profil du front depuis l'env
func GetFrontendProfileBaseURL() string {
	u := os.Getenv("FRONTEND_PROFILE_URL")
	if u == "" {
		// fallback local dev
		return "http://localhost:3000/employees/profile"
	}
	return u
}
