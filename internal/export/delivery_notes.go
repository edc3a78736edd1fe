package export

import (
	"io"
	"strconv"
	"strings"
	"time"

	"sppg-kitchen-api-server/internal/models"
)

// NoteOptions carries what a delivery note needs beyond the record itself.
type NoteOptions struct {
	Letterhead Letterhead
	// Addresses maps destination name to postal address.
	Addresses map[string]string
	Location  *time.Location
}

// address looks up dest the way the duplicate guard compares names: case
// and surrounding space do not matter.
func (o NoteOptions) address(dest string) string {
	if a, ok := o.Addresses[dest]; ok {
		return a
	}
	dest = strings.TrimSpace(dest)
	for name, a := range o.Addresses {
		if strings.EqualFold(strings.TrimSpace(name), dest) {
			return a
		}
	}
	return ""
}

const (
	notesPerPage = 2
	noteH        = 297.0 / notesPerPage
)

// DeliveryNotes writes one Surat Jalan per distribution, two per A4 page,
// in the given order.
func DeliveryNotes(w io.Writer, ds []models.Distribution, opts NoteOptions) error {
	d, err := deliveryNotesDoc(ds, opts)
	if err != nil {
		return err
	}
	return d.write(w)
}

func deliveryNotesDoc(ds []models.Distribution, opts NoteOptions) (*doc, error) {
	if len(ds) == 0 {
		return nil, ErrNothingToExport
	}
	if opts.Letterhead == (Letterhead{}) {
		opts.Letterhead = DefaultLetterhead
	}
	d := newDoc()
	for i, dist := range ds {
		slot := i % notesPerPage
		if slot == 0 {
			d.AddPage()
		}
		top := float64(slot) * noteH
		d.note(dist, opts, top)
		if slot == 0 && i+1 < len(ds) {
			d.cutLine(top + noteH)
		}
	}
	return d, nil
}

func (d *doc) note(dist models.Distribution, opts NoteOptions, top float64) {
	y := d.letterhead(opts.Letterhead, top+8)

	d.SetXY(margin, y)
	d.SetFont("Helvetica", "B", 14)
	d.text(contentW, 7, "SURAT JALAN", "", "C", 1)
	d.SetFont("Helvetica", "", 9)
	d.text(contentW, 5, "No. "+dist.SerialNumber, "", "C", 1)
	d.Ln(3)

	driver := dist.DriverName
	if driver == "" {
		driver = "-"
	}
	address := opts.address(dist.Destination)
	if address == "" {
		address = "-"
	}
	fields := [][2]string{
		{"Tanggal", IndonesianDate(dist.Timestamp, opts.Location)},
		{"Tujuan", dist.Destination},
		{"Alamat", address},
		{"Penerima", dist.RecipientName},
		{"Jumlah Porsi", strconv.Itoa(dist.Portions) + " porsi"},
		{"Pengemudi", driver},
	}
	for _, f := range fields {
		d.SetX(margin)
		d.SetFont("Helvetica", "", 10)
		d.text(35, 6, f[0], "", "L", 0)
		d.text(4, 6, ":", "", "L", 0)
		d.SetFont("Helvetica", "B", 10)
		d.text(contentW-39, 6, f[1], "", "L", 1)
	}

	sigY := top + noteH - 38
	colW := contentW / 3
	d.SetFont("Helvetica", "", 9)
	for i, label := range []string{"Pengirim", "Pengemudi", "Penerima"} {
		x := margin + float64(i)*colW
		d.SetXY(x, sigY)
		d.text(colW, 5, label, "", "C", 0)
		d.SetXY(x, sigY+22)
		d.text(colW, 5, "(....................)", "", "C", 0)
	}
}

func (d *doc) cutLine(y float64) {
	d.SetDashPattern([]float64{2, 2}, 0)
	d.Line(margin/2, y, pageW-margin/2, y)
	d.SetDashPattern(nil, 0)
}
