package extract

import (
	"bytes"
	"strings"

	"github.com/ledongthuc/pdf"
)

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)

		// A page with no extractable text contributes an empty string,
		// never an error.
		text := ""
		if !page.V.IsNull() {
			if pageText, pageErr := page.GetPlainText(nil); pageErr == nil {
				text = pageText
			}
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
