package extractor

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/rvaldezm/docscope/internal/core/domain"
)

// extractDocxText pulls the visible text out of word/document.xml. A DOCX
// is a ZIP of WordprocessingML parts; <w:t> carries text runs, </w:p> ends
// a paragraph and <w:tab/> is a literal tab.
func extractDocxText(data []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "open docx", err)
	}

	for _, part := range reader.File {
		if part.Name != "word/document.xml" {
			continue
		}
		rc, err := part.Open()
		if err != nil {
			return "", domain.WrapError(domain.ErrExtraction, "open docx document part", err)
		}
		defer rc.Close()
		return decodeDocumentXML(rc)
	}
	return "", domain.WrapError(domain.ErrExtraction, "open docx", fmt.Errorf("word/document.xml not found"))
}

func decodeDocumentXML(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var out strings.Builder
	var inText bool

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", domain.WrapError(domain.ErrExtraction, "decode docx xml", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				out.WriteByte('\t')
			case "br":
				out.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				out.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				out.Write(t)
			}
		}
	}
	return out.String(), nil
}
