// Package pdf renders finalized quote markdown into a paginated A4
// document. Rendering is a pure function of its inputs: image buffers are
// supplied by the caller and nothing here touches disk or network.
package pdf

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/quoteflowhq/quoteflow/internal/core/domain"
	"github.com/quoteflowhq/quoteflow/internal/markdown"
)

const (
	margin      = 15.0
	headerY     = 15.0
	logoWidth   = 40.0
	totalsWidth = 120.0
	rowHeight   = 10.0
	cellPad     = 3.0
)

// Brand palette carried over from the original template.
var (
	primaryColor   = [3]int{78, 151, 132}  // #4E9784
	textColor      = [3]int{51, 51, 51}    // #333333
	highlightColor = [3]int{232, 245, 233} // #E8F5E9
)

type Renderer struct{}

func NewRenderer() *Renderer { return &Renderer{} }

// RenderFinal lays out the complete finalized quote: header, totals,
// terms, scope, timeline, signature and the optional site photo. The
// photo is drawn only when both its buffer and the parsed site_photo
// section are present. Undecodable images degrade to omission.
func (r *Renderer) RenderFinal(md string, profile *domain.CompanyProfile, logo, photo []byte, photoRef string) ([]byte, error) {
	d := newDoc()
	d.drawHeader(profile, logo)
	d.drawBanner()

	sections := markdown.ParseSections(md)

	d.drawBillingBlock(sections)
	d.drawSummary(sections)
	d.drawTerms(profile)
	d.drawQuoteTitle(sections.First(markdown.KeyQuoteTitle))
	d.drawScope(sections.Lines(markdown.KeyScopeOfWork))
	d.drawTimeline(sections.Lines(markdown.KeyProjectTimeline))
	d.drawSignature()
	if sections.Has(markdown.KeySitePhoto) && len(photo) > 0 && photoRef != "" {
		d.drawSitePhoto(photo)
	}

	return d.output()
}

// RenderDraft is the reduced draft-stage variant: header, banner, title
// and scope of work only, before billing and timeline details exist.
func (r *Renderer) RenderDraft(md string, profile *domain.CompanyProfile, logo []byte) ([]byte, error) {
	d := newDoc()
	d.drawHeader(profile, logo)
	d.drawBanner()

	sections := markdown.ParseSections(md)
	d.drawQuoteTitle(sections.First(markdown.KeyQuoteTitle))
	d.drawScope(sections.Lines(markdown.KeyScopeOfWork))

	return d.output()
}

type doc struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	pageW  float64
	pageH  float64
	cursor float64
}

func newDoc() *doc {
	p := fpdf.New("P", "mm", "A4", "")
	p.SetAutoPageBreak(false, 0)
	p.AddPage()
	w, h := p.GetPageSize()
	return &doc{
		pdf:   p,
		tr:    p.UnicodeTranslatorFromDescriptor(""),
		pageW: w,
		pageH: h,
	}
}

func (d *doc) output() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (d *doc) checkPageBreak(space float64) {
	if d.cursor+space > d.pageH-margin {
		d.pdf.AddPage()
		d.cursor = 20
	}
}

func (d *doc) font(style string, size float64, color [3]int) {
	d.pdf.SetFont("Helvetica", style, size)
	d.pdf.SetTextColor(color[0], color[1], color[2])
}

func (d *doc) text(x, y float64, s string) {
	d.pdf.Text(x, y, d.tr(s))
}

func (d *doc) textRight(x, y float64, s string) {
	t := d.tr(s)
	d.pdf.Text(x-d.pdf.GetStringWidth(t), y, t)
}

func (d *doc) textCenter(x, y float64, s string) {
	t := d.tr(s)
	d.pdf.Text(x-d.pdf.GetStringWidth(t)/2, y, t)
}

// wrapText wraps s to the given width and returns code-page encoded
// lines ready for pdf.Text. SplitText walks runes against the 256-entry
// core font width table, so the translated bytes are widened to runes
// for measuring and packed back afterwards; feeding it translated or
// raw text directly panics on anything outside ASCII.
func (d *doc) wrapText(s string, w float64) []string {
	translated := d.tr(s)
	widened := make([]rune, len(translated))
	for i := 0; i < len(translated); i++ {
		widened[i] = rune(translated[i])
	}
	lines := d.pdf.SplitText(string(widened), w)
	for i, line := range lines {
		runes := []rune(line)
		packed := make([]byte, len(runes))
		for j, r := range runes {
			packed[j] = byte(r)
		}
		lines[i] = string(packed)
	}
	return lines
}

// registerImage validates the buffer before handing it to fpdf: first a
// config decode for format and aspect ratio, then a scratch document so a
// corrupt body can never poison the real one with a sticky error.
func (d *doc) registerImage(name string, buf []byte) (aspect float64, ok bool) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(buf))
	if err != nil || cfg.Width <= 0 {
		return 0, false
	}
	opts := fpdf.ImageOptions{ImageType: format}

	scratch := fpdf.New("P", "mm", "A4", "")
	scratch.RegisterImageOptionsReader(name, opts, bytes.NewReader(buf))
	if scratch.Err() {
		return 0, false
	}

	d.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(buf))
	return float64(cfg.Height) / float64(cfg.Width), true
}

func (d *doc) drawImage(name string, x, y, w, h float64) {
	d.pdf.ImageOptions(name, x, y, w, h, false, fpdf.ImageOptions{}, 0, "")
}

// drawHeader places the company block left and the logo right, both
// anchored to the same top line; the cursor lands under the taller one.
func (d *doc) drawHeader(profile *domain.CompanyProfile, logo []byte) {
	name, address, phone, email, website := "Your Company", "", "", "", ""
	if profile != nil {
		name, address, phone, email, website = profile.Name, profile.Address, profile.Phone, profile.Email, profile.Website
		if name == "" {
			name = "Your Company"
		}
	}

	d.font("B", 12, textColor)
	d.text(margin, headerY+5, name)

	d.font("", 10, textColor)
	infoY := headerY + 12
	const lineHeight = 5
	d.text(margin, infoY, address)
	d.text(margin, infoY+lineHeight, phone)
	d.text(margin, infoY+lineHeight*2, email)
	d.text(margin, infoY+lineHeight*3, website)
	headerBottom := infoY + lineHeight*3

	if len(logo) > 0 {
		if aspect, ok := d.registerImage("logo", logo); ok {
			logoTop := headerY - 5
			logoHeight := logoWidth * aspect
			d.drawImage("logo", d.pageW-margin-logoWidth, logoTop, logoWidth, logoHeight)
			if logoTop+logoHeight > headerBottom {
				headerBottom = logoTop + logoHeight
			}
		}
	}

	d.cursor = headerBottom + 15
}

func (d *doc) drawBanner() {
	d.font("B", 36, primaryColor)
	d.textRight(d.pageW-margin, d.cursor, "QUOTE")
	d.cursor += 20
}

// drawBillingBlock draws client information on the left and the parsed
// quote-detail pairs on the right, starting from the same vertical line.
func (d *doc) drawBillingBlock(sections markdown.Sections) {
	clientLines := sections.Lines(markdown.KeyClientInformation)

	d.font("B", 10, primaryColor)
	d.text(margin, d.cursor, "Bill To")
	d.cursor += 5

	d.font("", 10, textColor)
	for _, line := range clientLines {
		d.text(margin, d.cursor, strings.TrimPrefix(line, "- "))
		d.cursor += 5
	}

	detailsCursor := d.cursor - float64(len(clientLines))*5 - 5
	for _, line := range sections.Lines(markdown.KeyQuoteDetails) {
		label, value, found := strings.Cut(strings.TrimPrefix(line, "- "), ":")
		if !found || strings.TrimSpace(label) == "" || strings.TrimSpace(value) == "" {
			continue
		}
		label, value = strings.TrimSpace(label), strings.TrimSpace(value)
		if strings.Contains(strings.ToLower(label), "date") {
			value = FormatDate(value)
		}

		d.font("B", 10, primaryColor)
		d.text(d.pageW-margin-40, detailsCursor, label)
		d.font("", 10, textColor)
		d.textRight(d.pageW-margin, detailsCursor, value)
		detailsCursor += 6
	}
	d.cursor += 10
}

func (d *doc) drawSummary(sections markdown.Sections) {
	d.checkPageBreak(20)
	d.font("B", 10, primaryColor)
	d.text(margin, d.cursor, "Summary")
	d.cursor += 8

	head, body, ok := ParseTable(sections.Lines(markdown.KeySummary))
	if !ok {
		d.cursor += 20
		return
	}
	items := LineItems(body)

	d.drawItemRows(head, items)

	subtotal, tax, total := Totals(items)
	d.cursor += 2
	d.drawTotalsBlock(subtotal, tax, total)
	d.cursor += 20
}

func (d *doc) drawItemRows(head []string, items [][]string) {
	tableW := d.pageW - 2*margin

	d.checkPageBreak(rowHeight)
	d.pdf.SetFillColor(primaryColor[0], primaryColor[1], primaryColor[2])
	d.pdf.Rect(margin, d.cursor, tableW, rowHeight, "F")
	d.font("B", 10, [3]int{255, 255, 255})
	if len(head) > 0 {
		d.text(margin+cellPad, d.cursor+6.5, head[0])
	}
	if len(head) > 1 {
		d.textRight(d.pageW-margin-cellPad, d.cursor+6.5, head[1])
	}
	d.cursor += rowHeight

	d.font("", 10, textColor)
	for _, row := range items {
		d.checkPageBreak(rowHeight)
		if len(row) > 0 {
			d.text(margin+cellPad, d.cursor+6.5, row[0])
		}
		if len(row) > 1 {
			d.textRight(d.pageW-margin-cellPad, d.cursor+6.5, row[1])
		}
		d.cursor += rowHeight
	}

	d.pdf.SetDrawColor(primaryColor[0], primaryColor[1], primaryColor[2])
	d.pdf.SetLineWidth(0.5)
	d.pdf.Line(margin, d.cursor, d.pageW-margin, d.cursor)
}

// drawTotalsBlock renders the separately-positioned Subtotal / Tax /
// Total table with the total row highlighted, bold and underlined.
func (d *doc) drawTotalsBlock(subtotal, tax, total float64) {
	left := d.pageW - margin - totalsWidth
	rows := []struct {
		label string
		value string
		total bool
	}{
		{"Subtotal", FormatMoney(subtotal), false},
		{"Sales Tax (5%)", FormatMoney(tax), false},
		{"Total (USD)", FormatMoney(total), true},
	}

	for _, row := range rows {
		d.checkPageBreak(rowHeight)
		if row.total {
			d.pdf.SetFillColor(highlightColor[0], highlightColor[1], highlightColor[2])
			d.pdf.Rect(left, d.cursor, totalsWidth, rowHeight, "F")
			d.font("B", 10, textColor)
		} else {
			d.font("", 10, textColor)
		}
		d.text(left+cellPad, d.cursor+6.5, row.label)
		d.textRight(left+totalsWidth-cellPad, d.cursor+6.5, row.value)
		d.cursor += rowHeight
		if row.total {
			d.pdf.SetDrawColor(primaryColor[0], primaryColor[1], primaryColor[2])
			d.pdf.SetLineWidth(0.5)
			d.pdf.Line(left, d.cursor, left+totalsWidth, d.cursor)
		}
	}
}

func (d *doc) drawTerms(profile *domain.CompanyProfile) {
	d.checkPageBreak(20)
	d.font("B", 10, primaryColor)
	d.text(margin, d.cursor, "Terms and Conditions")
	d.cursor += 6

	terms := ""
	if profile != nil {
		terms = profile.TermsAndConditions
	}
	d.font("", 9, textColor)
	lines := d.wrapText(terms, d.pageW-2*margin)
	for _, line := range lines {
		d.checkPageBreak(4)
		d.pdf.Text(margin, d.cursor, line)
		d.cursor += 4
	}
	d.cursor += 20
}

var hashStripper = strings.NewReplacer("#", "")

func (d *doc) drawQuoteTitle(title string) {
	if title == "" {
		return
	}
	clean := strings.TrimSpace(hashStripper.Replace(title))
	d.checkPageBreak(20)
	d.font("B", 14, primaryColor)
	d.textCenter(d.pageW/2, d.cursor, clean)
	d.cursor += 15
}

// drawScope renders one bullet per source line, leading hyphens replaced
// with a bullet glyph and long lines wrapped to the content width.
func (d *doc) drawScope(lines []string) {
	if len(lines) == 0 {
		return
	}
	d.checkPageBreak(20)
	d.font("B", 10, primaryColor)
	d.text(margin, d.cursor, "Scope Of Work")
	d.cursor += 10

	d.font("", 10, textColor)
	for _, line := range lines {
		bullet := line
		if strings.HasPrefix(bullet, "- ") {
			bullet = "• " + bullet[2:]
		}
		wrapped := d.wrapText(bullet, d.pageW-2*margin)
		d.checkPageBreak(float64(len(wrapped))*5 + 2)
		for i, wl := range wrapped {
			d.pdf.Text(margin, d.cursor+float64(i)*5, wl)
		}
		d.cursor += float64(len(wrapped))*5 + 2
	}
	d.cursor += 10
}

func (d *doc) drawTimeline(lines []string) {
	head, body, ok := ParseTable(lines)
	if !ok {
		return
	}

	d.checkPageBreak(30)
	d.font("B", 10, primaryColor)
	d.text(margin, d.cursor, "Project Timeline")
	d.cursor += 6

	cols := len(head)
	if cols == 0 {
		cols = 1
	}
	tableW := d.pageW - 2*margin
	colW := tableW / float64(cols)

	d.pdf.SetDrawColor(textColor[0], textColor[1], textColor[2])
	d.pdf.SetLineWidth(0.2)

	d.checkPageBreak(rowHeight)
	d.pdf.SetFillColor(primaryColor[0], primaryColor[1], primaryColor[2])
	d.font("B", 10, [3]int{255, 255, 255})
	for c, cell := range head {
		x := margin + float64(c)*colW
		d.pdf.Rect(x, d.cursor, colW, rowHeight, "FD")
		d.text(x+cellPad, d.cursor+6.5, cell)
	}
	d.cursor += rowHeight

	d.font("", 10, textColor)
	for _, row := range body {
		d.checkPageBreak(rowHeight)
		for c := 0; c < cols; c++ {
			x := margin + float64(c)*colW
			d.pdf.Rect(x, d.cursor, colW, rowHeight, "D")
			if c < len(row) {
				d.text(x+cellPad, d.cursor+6.5, row[c])
			}
		}
		d.cursor += rowHeight
	}
	d.cursor += 15
}

func (d *doc) drawSignature() {
	d.checkPageBreak(40)
	d.cursor += 20
	sigX := d.pageW - margin - 80
	d.pdf.SetDrawColor(primaryColor[0], primaryColor[1], primaryColor[2])
	d.pdf.SetLineWidth(0.2)
	d.pdf.Line(sigX, d.cursor, d.pageW-margin, d.cursor)
	d.font("", 9, textColor)
	d.textCenter(sigX+40, d.cursor+5, "Customer Signature")
	d.cursor += 10
}

func (d *doc) drawSitePhoto(photo []byte) {
	aspect, ok := d.registerImage("site_photo", photo)
	if !ok {
		return
	}

	d.checkPageBreak(80)
	d.font("B", 10, primaryColor)
	d.text(margin, d.cursor, "Site Photo")
	d.cursor += 6

	imageW := d.pageW - 2*margin
	imageH := imageW * aspect
	d.checkPageBreak(imageH + 10)
	d.drawImage("site_photo", margin, d.cursor, imageW, imageH)
	d.cursor += imageH + 10
}
