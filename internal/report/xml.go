package report

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/ginjaninja78/sales-data-processor/internal/types"
)

// XMLElement is a generic XML element. Element names come from the input
// headers, so the tree is built dynamically rather than from fixed structs.
type XMLElement struct {
	XMLName  xml.Name
	Attrs    []xml.Attr   `xml:",attr"`
	Value    string       `xml:",chardata"`
	Children []XMLElement `xml:",any"`
}

// GenerateXML renders the report as:
//
//	<salesData source="..." runId="...">
//	  <summary>
//	    <total_records>5</total_records>
//	    ...
//	  </summary>
//	  <records>
//	    <record n="1">
//	      <TransactionID>T1</TransactionID>
//	      ...
//	      <Revenue>3000</Revenue>
//	    </record>
//	  </records>
//	</salesData>
func GenerateXML(r *Report) ([]byte, error) {
	root := XMLElement{
		XMLName: xml.Name{Local: "salesData"},
		Attrs: []xml.Attr{
			{Name: xml.Name{Local: "source"}, Value: r.Source},
			{Name: xml.Name{Local: "runId"}, Value: r.RunID},
		},
		Children: []XMLElement{
			buildSummaryElement(r.Summary),
			buildRecordsElement(r.Records, r.Columns()),
		},
	}

	var buffer bytes.Buffer
	buffer.WriteString(xml.Header)

	encoder := xml.NewEncoder(&buffer)
	encoder.Indent("", "  ")
	if err := encoder.Encode(root); err != nil {
		return nil, fmt.Errorf("failed to marshal XML: %w", err)
	}
	buffer.WriteString("\n")

	return buffer.Bytes(), nil
}

func buildSummaryElement(s types.Summary) XMLElement {
	return XMLElement{
		XMLName: xml.Name{Local: "summary"},
		Children: []XMLElement{
			createSimpleElement("total_records", strconv.Itoa(s.TotalRecords)),
			createSimpleElement("invalid_records", strconv.Itoa(s.InvalidRecords)),
			createSimpleElement("valid_records", strconv.Itoa(s.ValidRecords)),
		},
	}
}

func buildRecordsElement(records []types.EnrichedRecord, columns []string) XMLElement {
	element := XMLElement{
		XMLName:  xml.Name{Local: "records"},
		Children: make([]XMLElement, 0, len(records)),
	}

	for i, rec := range records {
		recordElement := XMLElement{
			XMLName: xml.Name{Local: "record"},
			Attrs: []xml.Attr{
				{Name: xml.Name{Local: "n"}, Value: strconv.Itoa(i + 1)},
			},
			Children: make([]XMLElement, 0, len(columns)),
		}
		for _, col := range columns {
			recordElement.Children = append(recordElement.Children,
				createSimpleElement(ElementName(col), cellValue(rec, col)))
		}
		element.Children = append(element.Children, recordElement)
	}

	return element
}

func createSimpleElement(name, value string) XMLElement {
	return XMLElement{
		XMLName: xml.Name{Local: name},
		Value:   value,
	}
}

// ElementName turns a header into a valid XML element name. Characters that
// are not allowed become '_', and a leading digit or punctuation gets a '_'
// prefix. Example: "Unit Price" -> "Unit_Price", "2024" -> "_2024".
func ElementName(header string) string {
	if header == "" {
		return "_"
	}

	var b strings.Builder
	for i, r := range header {
		valid := unicode.IsLetter(r) || r == '_' ||
			(i > 0 && (unicode.IsDigit(r) || r == '-' || r == '.'))
		if valid {
			b.WriteRune(r)
			continue
		}
		if i == 0 && (unicode.IsDigit(r) || r == '-' || r == '.') {
			b.WriteRune('_')
			b.WriteRune(r)
			continue
		}
		b.WriteRune('_')
	}

	name := b.String()
	if strings.HasPrefix(strings.ToLower(name), "xml") {
		name = "_" + name
	}
	return name
}
