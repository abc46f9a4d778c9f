package report

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"example.com/chandb/internal/diag"
	"example.com/chandb/internal/model"
)

// Meta describes the document a summary PDF reports on.
type Meta struct {
	File     string
	Dialect  string
	Version  string
	Checksum string
}

// SaveSummaryPDF renders the loaded channel database and its check report
// into a PDF document with an integrity QR code in the header.
func SaveSummaryPDF(meta Meta, root *model.DataRoot, rep diag.Report, out string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Channel Database Report", false)
	pdf.SetAuthor("chandbctl", false)
	pdf.SetCreator("chandbctl", false)
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	addPDFTitle(pdf, "Channel Database Report")
	addIntegrityQR(pdf, meta.Checksum)
	addDocumentSection(pdf, meta, root)
	for _, list := range root.Lists {
		addChannelSection(pdf, list)
	}
	addFindingsSection(pdf, rep.Findings)

	if pdf.Err() {
		return pdf.Error()
	}
	return pdf.OutputFileAndClose(out)
}

func addPDFTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)
}

func addIntegrityQR(pdf *gofpdf.Fpdf, checksum string) {
	png, err := IntegrityQR(checksum, 256)
	if err != nil {
		return
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("integrity-qr", opts, bytes.NewReader(png))
	pdf.ImageOptions("integrity-qr", 166, 12, 28, 28, false, opts, 0, "")
}

func addDocumentSection(pdf *gofpdf.Fpdf, meta Meta, root *model.DataRoot) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Document")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	items := []struct {
		label string
		value string
	}{
		{label: "File", value: meta.File},
		{label: "Dialect", value: meta.Dialect},
		{label: "Version", value: meta.Version},
		{label: "Checksum", value: meta.Checksum},
		{label: "Lists", value: strconv.Itoa(len(root.Lists))},
		{label: "Channels", value: strconv.Itoa(root.ChannelCount())},
	}
	for _, item := range items {
		pdf.CellFormat(50, 6, item.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, emptyFallback(item.value, "-"), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func addChannelSection(pdf *gofpdf.Fpdf, list *model.ChannelList) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, list.Caption)
	pdf.Ln(9)

	headers := []string{"No", "Name", "Signal", "SID", "ONID", "TSID", "Flags"}
	widths := []float64{16, 72, 20, 20, 20, 20, 22}

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	lineHeight := 5.0
	for _, ch := range list.Channels {
		values := []string{
			programLabel(ch),
			emptyFallback(ch.Name, "-"),
			ch.Signal.String(),
			strconv.Itoa(ch.ServiceID),
			strconv.Itoa(ch.OriginalNetworkID),
			strconv.Itoa(ch.TransportStreamID),
			flagLabel(ch),
		}
		renderTableRow(pdf, widths, values, lineHeight)
	}
	pdf.Ln(4)
}

func addFindingsSection(pdf *gofpdf.Fpdf, findings []diag.Finding) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Findings")
	pdf.Ln(9)

	if len(findings) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, "No findings recorded.", "", "L", false)
		return
	}

	for i, f := range findings {
		pdf.SetFont("Helvetica", "B", 10)
		header := fmt.Sprintf("%d. %s (%s)", i+1, f.Code, severityLabel(f.Severity))
		pdf.MultiCell(0, 5, header, "", "L", false)

		if msg := strings.TrimSpace(f.Message); msg != "" {
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, msg, "", "L", false)
		}

		meta := findingMetadata(f)
		if meta != "" {
			pdf.SetFont("Helvetica", "", 9)
			pdf.MultiCell(0, 4, meta, "", "L", false)
		}

		pdf.Ln(2)
	}
}

func renderTableRow(pdf *gofpdf.Fpdf, widths []float64, values []string, lineHeight float64) {
	xStart := pdf.GetX()
	yStart := pdf.GetY()
	maxLines := 1
	splitCols := make([][]string, len(values))
	for i, val := range values {
		text := strings.TrimSpace(val)
		if text == "" {
			text = "-"
		}
		lines := pdf.SplitText(text, widths[i]-2)
		if len(lines) == 0 {
			lines = []string{""}
		}
		splitCols[i] = lines
		if len(lines) > maxLines {
			maxLines = len(lines)
		}
	}
	rowHeight := float64(maxLines) * lineHeight
	x := xStart
	for i, lines := range splitCols {
		pdf.SetXY(x, yStart)
		cellText := strings.Join(lines, "\n")
		pdf.MultiCell(widths[i], lineHeight, cellText, "1", "L", false)
		x += widths[i]
	}
	pdf.SetXY(xStart, yStart+rowHeight)
}

func programLabel(ch *model.Channel) string {
	if ch.IsDeleted || ch.NewProgramNr < 0 {
		return "-"
	}
	return strconv.Itoa(ch.NewProgramNr)
}

func flagLabel(ch *model.Channel) string {
	var b strings.Builder
	if ch.IsDeleted {
		b.WriteByte('D')
	}
	if ch.Encrypted {
		b.WriteByte('E')
	}
	if ch.Hidden {
		b.WriteByte('H')
	}
	if ch.Favorites != 0 {
		fmt.Fprintf(&b, "F%d", ch.Favorites)
	}
	if b.Len() == 0 {
		return "-"
	}
	return b.String()
}

func severityLabel(sev diag.Severity) string {
	if s := strings.TrimSpace(string(sev)); s != "" {
		return s
	}
	return "UNKNOWN"
}

func emptyFallback(val, fallback string) string {
	if strings.TrimSpace(val) == "" {
		return fallback
	}
	return val
}

func findingMetadata(f diag.Finding) string {
	parts := make([]string, 0, 4)
	if !f.Ts.IsZero() {
		parts = append(parts, f.Ts.Format(time.RFC3339))
	}
	if f.File != "" {
		parts = append(parts, f.File)
	}
	if f.List != "" {
		parts = append(parts, "list "+f.List)
	}
	if f.RecordID != 0 {
		parts = append(parts, "record "+strconv.Itoa(f.RecordID))
	}
	return strings.Join(parts, " | ")
}
