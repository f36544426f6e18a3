package process

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/nguyenthenguyen/docx"

	"atlas/internal/metrics"
	"atlas/pkg/errors"
)

// DocumentVersion stamps the generated specification's control table.
const DocumentVersion = "1.0"

// WriteDocument renders the process specification as a Word document:
// title, document control table, overview, actors, one section per step
// and the subprocess flows that were generated for them.
//
// The file is assembled as minimal OOXML directly; the docx libraries in
// use only read or edit existing documents.
func (s *Store) WriteDocument(proc Process, subprocesses []Subprocess) (string, error) {
	path := filepath.Join(s.dir, documentFileName(proc.ProcessName))

	var body strings.Builder
	writeHeading(&body, 0, proc.ProcessName)

	// Document control
	writeHeading(&body, 1, "Document Control")
	writeControlTable(&body, DocumentVersion, "Process Architect")

	// Overview
	writeHeading(&body, 1, "Process Overview")
	writeParagraph(&body, proc.Description)

	if len(proc.Actors) > 0 {
		writeHeading(&body, 1, "Actors")
		for _, actor := range proc.Actors {
			writeBullet(&body, actor)
		}
	}

	subByStep := make(map[string]Subprocess, len(subprocesses))
	for _, sub := range subprocesses {
		subByStep[sub.StepName] = sub
	}

	writeHeading(&body, 1, "Process Steps")
	for i, step := range proc.ProcessSteps {
		writeHeading(&body, 2, fmt.Sprintf("%d. %s", i+1, step.StepName))
		writeParagraph(&body, step.Description)
		if step.Actor != "" {
			writeParagraph(&body, "Responsible: "+step.Actor)
		}
		for _, input := range step.Inputs {
			writeBullet(&body, "Input: "+input)
		}
		for _, output := range step.Outputs {
			writeBullet(&body, "Output: "+output)
		}
		if len(step.NextSteps) > 0 {
			writeParagraph(&body, "Next: "+strings.Join(step.NextSteps, ", "))
		}

		if sub, ok := subByStep[step.StepName]; ok && len(sub.SubprocessSteps) > 0 {
			writeParagraph(&body, "Subprocess flow:")
			for _, substep := range sub.SubprocessSteps {
				label := substep.SubstepName
				if substep.IsGateway() {
					label = "[decision] " + label
				}
				if substep.Description != "" {
					label += " - " + substep.Description
				}
				writeBullet(&body, label)
			}
		}
	}

	data, err := buildDocxArchive(body.String())
	if err != nil {
		metrics.RecordArtifactWrite("docx", err)
		return "", err
	}
	if err := s.writeFile(path, data, "docx"); err != nil {
		return "", err
	}
	return path, nil
}

// ExtractDocumentText pulls the plain text out of an existing process
// document, used by the update flow to seed the analysis stage.
func ExtractDocumentText(path string) (string, error) {
	doc, err := docx.ReadDocxFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to open document %s", path)
	}
	defer doc.Close()

	content := doc.Editable().GetContent()
	return flattenDocumentXML(content), nil
}

func documentFileName(processName string) string {
	slug := strings.Trim(unsafePathChars.ReplaceAllString(processName, "_"), "_")
	if slug == "" {
		slug = "process"
	}
	return slug + "_specification.docx"
}

// --- OOXML assembly ---

func escapeXML(text string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(text))
	return sb.String()
}

func writeParagraph(sb *strings.Builder, text string) {
	if text == "" {
		return
	}
	fmt.Fprintf(sb, `<w:p><w:r><w:t xml:space="preserve">%s</w:t></w:r></w:p>`, escapeXML(text))
}

func writeHeading(sb *strings.Builder, level int, text string) {
	style := "Title"
	if level > 0 {
		style = fmt.Sprintf("Heading%d", level)
	}
	fmt.Fprintf(sb,
		`<w:p><w:pPr><w:pStyle w:val="%s"/></w:pPr><w:r><w:t xml:space="preserve">%s</w:t></w:r></w:p>`,
		style, escapeXML(text))
}

func writeBullet(sb *strings.Builder, text string) {
	fmt.Fprintf(sb,
		`<w:p><w:pPr><w:pStyle w:val="ListParagraph"/></w:pPr><w:r><w:t xml:space="preserve">%s %s</w:t></w:r></w:p>`,
		"•", escapeXML(text))
}

func writeControlTable(sb *strings.Builder, version, author string) {
	cell := func(text string) string {
		return fmt.Sprintf(`<w:tc><w:tcPr><w:tcW w:w="2400" w:type="dxa"/></w:tcPr><w:p><w:r><w:t>%s</w:t></w:r></w:p></w:tc>`,
			escapeXML(text))
	}
	sb.WriteString(`<w:tbl><w:tblPr><w:tblBorders>` +
		`<w:top w:val="single" w:sz="4"/><w:bottom w:val="single" w:sz="4"/>` +
		`<w:left w:val="single" w:sz="4"/><w:right w:val="single" w:sz="4"/>` +
		`<w:insideH w:val="single" w:sz="4"/><w:insideV w:val="single" w:sz="4"/>` +
		`</w:tblBorders></w:tblPr>`)
	sb.WriteString("<w:tr>" + cell("Version") + cell("Date") + cell("Author") + cell("Description") + "</w:tr>")
	sb.WriteString("<w:tr>" +
		cell(version) +
		cell(time.Now().Format("2006-01-02")) +
		cell(author) +
		cell("Generated process specification") +
		"</w:tr>")
	sb.WriteString(`</w:tbl>`)
}

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
</Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const documentRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>
</Relationships>`

const stylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:style w:type="paragraph" w:styleId="Title"><w:name w:val="Title"/><w:rPr><w:b/><w:sz w:val="48"/></w:rPr></w:style>
<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/><w:rPr><w:b/><w:sz w:val="32"/></w:rPr></w:style>
<w:style w:type="paragraph" w:styleId="Heading2"><w:name w:val="heading 2"/><w:rPr><w:b/><w:sz w:val="26"/></w:rPr></w:style>
<w:style w:type="paragraph" w:styleId="ListParagraph"><w:name w:val="List Paragraph"/><w:pPr><w:ind w:left="720"/></w:pPr></w:style>
</w:styles>`

func buildDocxArchive(bodyXML string) ([]byte, error) {
	document := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:body>` + bodyXML + `<w:sectPr/></w:body></w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	parts := []struct {
		name string
		data string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{"word/_rels/document.xml.rels", documentRelsXML},
		{"word/styles.xml", stylesXML},
		{"word/document.xml", document},
	}
	for _, part := range parts {
		w, err := zw.Create(part.name)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrArtifactWrite, "failed to add %s: %v", part.name, err)
		}
		if _, err := w.Write([]byte(part.data)); err != nil {
			return nil, errors.Wrapf(errors.ErrArtifactWrite, "failed to write %s: %v", part.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(errors.ErrArtifactWrite, err.Error())
	}
	return buf.Bytes(), nil
}

// flattenDocumentXML strips tags from document.xml content, inserting
// newlines at paragraph boundaries.
func flattenDocumentXML(content string) string {
	content = strings.ReplaceAll(content, "</w:p>", "\n")
	var sb strings.Builder
	inTag := false
	for _, r := range content {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			sb.WriteRune(r)
		}
	}
	return strings.TrimSpace(sb.String())
}
