package export

import (
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"sppg-kitchen-api-server/internal/models"
	"sppg-kitchen-api-server/internal/procurement"
)

// StockReport lists the items of one type, alphabetically, with their
// condition against the reorder threshold.
func StockReport(w io.Writer, items []models.StockItem, itemType models.ItemType, printedAt time.Time, loc *time.Location) error {
	var rows []models.StockItem
	for _, it := range items {
		if it.ItemType == itemType {
			rows = append(rows, it)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return strings.ToLower(rows[i].Name) < strings.ToLower(rows[j].Name)
	})

	title := "LAPORAN STOK: PERALATAN"
	if itemType == models.ItemBahan {
		title = "LAPORAN STOK: BAHAN BAKU"
	}
	body := make([][]string, len(rows))
	for i, it := range rows {
		cond := "AMAN"
		if it.Critical() {
			cond = "KRITIS"
		}
		body[i] = []string{strconv.Itoa(i + 1), it.Name, it.Category, quantity(it.Quantity), it.Unit, cond}
	}

	d := newDoc()
	d.AddPage()
	y := d.reportHeading(title, printedAt, loc)
	d.table(
		[]string{"No.", "Nama Barang", "Kategori", "Stok Sistem", "Satuan", "Kondisi"},
		[]float64{12, 60, 40, 26, 22, 22},
		body, y)
	return d.write(w)
}

// ProcurementReport lists every order with its first item, funding source and total.
func ProcurementReport(w io.Writer, ps []models.Procurement, printedAt time.Time, loc *time.Location) error {
	body := make([][]string, len(ps))
	var grand float64
	for i, p := range ps {
		item, qty, price := "-", "-", "0"
		if len(p.Items) > 0 {
			first := p.Items[0]
			item = first.Name
			qty = strings.TrimSpace(quantity(first.Quantity) + " " + first.Unit)
			price = Thousands(first.Price)
		}
		funding := string(p.FundingSource)
		if funding == "" {
			funding = string(models.FundingYayasan)
		}
		id := p.ID
		if len(id) > 8 {
			id = id[:8]
		}
		body[i] = []string{id, funding, p.Supplier, item, qty, price, string(p.Status), Thousands(p.TotalPrice)}
		grand += procurement.Total(p.Items)
	}
	body = append(body, []string{"", "", "", "", "", "", "TOTAL", Thousands(grand)})

	d := newDoc()
	d.AddPage()
	y := d.reportHeading("LAPORAN PENGADAAN BARANG - PROGRAM MBG", printedAt, loc)
	d.table(
		[]string{"ID Pesanan", "Sumber", "Supplier", "Barang", "Qty", "Harga (IDR)", "Status", "Total"},
		[]float64{20, 24, 30, 30, 18, 22, 18, 20},
		body, y)
	return d.write(w)
}

// MenuPlan prints one menu with its ingredient list.
func MenuPlan(w io.Writer, plan models.MenuPlan, loc *time.Location) error {
	body := make([][]string, len(plan.Ingredients))
	for i, ing := range plan.Ingredients {
		body[i] = []string{strconv.Itoa(i + 1), ing.Name, quantity(ing.Quantity), ing.Unit}
	}

	d := newDoc()
	d.AddPage()
	y := d.letterhead(DefaultLetterhead, margin)
	d.SetXY(margin, y+2)
	d.SetFont("Helvetica", "B", 13)
	d.text(contentW, 7, "RENCANA MENU MBG", "", "C", 1)
	d.SetFont("Helvetica", "", 10)
	d.text(contentW, 5, "Menu: "+plan.Name, "", "L", 1)
	d.text(contentW, 5, "Tanggal: "+IndonesianDate(plan.Date, loc), "", "L", 1)
	d.text(contentW, 5, "Porsi: "+strconv.Itoa(plan.Portions), "", "L", 1)
	d.table([]string{"No.", "Bahan", "Jumlah", "Satuan"}, []float64{12, 100, 35, 35}, body, d.GetY()+3)
	return d.write(w)
}

func (d *doc) reportHeading(title string, printedAt time.Time, loc *time.Location) float64 {
	y := d.letterhead(DefaultLetterhead, margin)
	d.SetXY(margin, y+3)
	d.SetFont("Helvetica", "B", 11)
	d.text(contentW, 6, title, "", "L", 1)
	d.SetFont("Helvetica", "", 8)
	d.text(contentW, 4, "Dicetak pada: "+IndonesianDateTime(printedAt, loc), "", "L", 1)
	return d.GetY() + 3
}
