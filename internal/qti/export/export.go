// Package export writes an exam as an IMS QTI 2.1 content package: one
// assessmentItem per question plus imsmanifest.xml, zipped.
package export

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/mind-engage/mindengage-qbank/internal/exam"
	"github.com/mind-engage/mindengage-qbank/internal/question"
)

const qtiNS = "http://www.imsglobal.org/xsd/imsqti_v2p1"

// BuildPackage zips ex with the full questions (alternatives included) in
// exam order. Questions without alternatives become extended-text items.
func BuildPackage(ex exam.Exam, questions []question.Question) ([]byte, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	mf := imsManifest{
		Xmlns:      "http://www.imsglobal.org/xsd/imscp_v1p1",
		Identifier: fmt.Sprintf("exam-%d", ex.ID),
		Title:      ex.Title,
	}
	for _, q := range questions {
		ident := itemIdentifier(q.ID)
		href := ident + ".xml"
		mf.Resources = append(mf.Resources, imsResource{
			Identifier: ident,
			Type:       "imsqti_item_xmlv2p1",
			Href:       href,
			Files:      []imsFile{{Href: href}},
		})
		if err := writeXML(zw, href, buildItem(q)); err != nil {
			return nil, err
		}
	}
	if err := writeXML(zw, "imsmanifest.xml", mf); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("export: close zip: %w", err)
	}
	return buf.Bytes(), nil
}

func writeXML(zw *zip.Writer, name string, v any) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", name, err)
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("export: write %s: %w", name, err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("export: encode %s: %w", name, err)
	}
	return nil
}

func itemIdentifier(id int64) string { return fmt.Sprintf("q%d", id) }

func choiceIdentifier(i int) string { return fmt.Sprintf("c%d", i+1) }

func buildItem(q question.Question) assessmentItem {
	item := assessmentItem{
		Xmlns:      qtiNS,
		Identifier: itemIdentifier(q.ID),
		Title:      q.Title,
	}
	if len(q.Alternatives) == 0 {
		item.Body = itemBody{
			Prompt:       q.Title,
			ExtendedText: &extendedTextInteraction{ResponseIdentifier: "RESPONSE"},
		}
		return item
	}

	ci := &choiceInteraction{ResponseIdentifier: "RESPONSE", MaxChoices: 1, Prompt: q.Title}
	decl := &responseDeclaration{Identifier: "RESPONSE", Cardinality: "single", BaseType: "identifier"}
	for i, a := range q.Alternatives {
		ci.Choices = append(ci.Choices, simpleChoice{Identifier: choiceIdentifier(i), Text: a.Description})
		if a.IsCorrect {
			decl.Correct = append(decl.Correct, choiceIdentifier(i))
		}
	}
	item.Response = decl
	item.Body = itemBody{Choice: ci}
	return item
}

// --- XML model (export only) ---

type imsManifest struct {
	XMLName    xml.Name      `xml:"manifest"`
	Xmlns      string        `xml:"xmlns,attr,omitempty"`
	Identifier string        `xml:"identifier,attr"`
	Title      string        `xml:"metadata>title,omitempty"`
	Resources  []imsResource `xml:"resources>resource"`
}

type imsResource struct {
	Identifier string    `xml:"identifier,attr"`
	Type       string    `xml:"type,attr"`
	Href       string    `xml:"href,attr"`
	Files      []imsFile `xml:"file"`
}

type imsFile struct {
	Href string `xml:"href,attr"`
}

type assessmentItem struct {
	XMLName    xml.Name             `xml:"assessmentItem"`
	Xmlns      string               `xml:"xmlns,attr"`
	Identifier string               `xml:"identifier,attr"`
	Title      string               `xml:"title,attr"`
	Response   *responseDeclaration `xml:"responseDeclaration,omitempty"`
	Body       itemBody             `xml:"itemBody"`
}

type responseDeclaration struct {
	Identifier  string   `xml:"identifier,attr"`
	Cardinality string   `xml:"cardinality,attr"`
	BaseType    string   `xml:"baseType,attr"`
	Correct     []string `xml:"correctResponse>value"`
}

type itemBody struct {
	Prompt       string                   `xml:"p,omitempty"`
	Choice       *choiceInteraction       `xml:"choiceInteraction,omitempty"`
	ExtendedText *extendedTextInteraction `xml:"extendedTextInteraction,omitempty"`
}

type choiceInteraction struct {
	ResponseIdentifier string         `xml:"responseIdentifier,attr"`
	MaxChoices         int            `xml:"maxChoices,attr"`
	Prompt             string         `xml:"prompt,omitempty"`
	Choices            []simpleChoice `xml:"simpleChoice"`
}

type simpleChoice struct {
	Identifier string `xml:"identifier,attr"`
	Text       string `xml:",chardata"`
}

type extendedTextInteraction struct {
	ResponseIdentifier string `xml:"responseIdentifier,attr"`
}
