package extract

import (
	"bytes"
	"strings"

	"github.com/fumiama/go-docx"
)

func extractDocx(data []byte) (string, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		sb.WriteString(para.String())
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
