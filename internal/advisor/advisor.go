// Package advisor asks a language model for menu ideas and stock advice.
package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"sppg-kitchen-api-server/internal/models"
)

// ErrDisabled is returned when no model is configured.
var ErrDisabled = errors.New("AI advisor is not configured")

type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

type Answer struct {
	Text    string   `json:"text"`
	Sources []Source `json:"sources"`
}

// Generator is a text model. search enables web grounding.
type Generator interface {
	Generate(ctx context.Context, prompt string, search bool) (Answer, error)
}

type Advisor struct {
	gen Generator
	log *zap.Logger
}

// New returns an advisor; a nil gen yields one that always answers ErrDisabled.
func New(gen Generator, log *zap.Logger) *Advisor {
	return &Advisor{gen: gen, log: log.Named("advisor")}
}

func (a *Advisor) Enabled() bool { return a != nil && a.gen != nil }

// MenuRecommendation proposes three balanced school lunches from the
// ingredients on hand.
func (a *Advisor) MenuRecommendation(ctx context.Context, stock []models.StockItem) (Answer, error) {
	if !a.Enabled() {
		return Answer{}, ErrDisabled
	}
	ans, err := a.gen.Generate(ctx, menuPrompt(stock), true)
	if err != nil {
		a.log.Error("menu recommendation failed", zap.Error(err))
		return Answer{}, fmt.Errorf("menu recommendation: %w", err)
	}
	if ans.Sources == nil {
		ans.Sources = []Source{}
	}
	return ans, nil
}

// AnalyzeStock flags critical items and suggests a week of purchasing.
func (a *Advisor) AnalyzeStock(ctx context.Context, stock []models.StockItem) (string, error) {
	if !a.Enabled() {
		return "", ErrDisabled
	}
	prompt, err := analysisPrompt(stock)
	if err != nil {
		return "", err
	}
	ans, err := a.gen.Generate(ctx, prompt, false)
	if err != nil {
		a.log.Error("stock analysis failed", zap.Error(err))
		return "", fmt.Errorf("stock analysis: %w", err)
	}
	return ans.Text, nil
}

func menuPrompt(stock []models.StockItem) string {
	var parts []string
	for _, s := range stock {
		if s.ItemType != models.ItemBahan {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %g %s", s.Name, s.Quantity, s.Unit))
	}
	return "Bertindaklah sebagai Ahli Gizi untuk program MBG (Makan Bergizi Gratis).\n" +
		"Berdasarkan stok bahan berikut: " + strings.Join(parts, ", ") + ".\n" +
		"Berikan 3 set menu makan siang sekolah yang seimbang (Karbo, Protein, Sayur, Buah/Susu).\n" +
		"Gunakan bahan yang tersedia sebanyak mungkin.\n" +
		"Format jawaban dalam Markdown yang rapi dengan tabel porsi."
}

type stockRow struct {
	N   string  `json:"n"`
	Q   float64 `json:"q"`
	U   string  `json:"u"`
	Min float64 `json:"min"`
}

func analysisPrompt(stock []models.StockItem) (string, error) {
	rows := make([]stockRow, len(stock))
	for i, s := range stock {
		rows[i] = stockRow{N: s.Name, Q: s.Quantity, U: s.Unit, Min: s.MinThreshold}
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("encode stock: %w", err)
	}
	return "Analisis data stok inventori dapur SPPG berikut: " + string(data) + ".\n" +
		"Identifikasi barang yang kritis (di bawah threshold) dan berikan saran prioritas pengadaan untuk operasional 1 minggu ke depan.\n" +
		"Berikan output dalam poin-poin Markdown yang singkat dan padat.", nil
}
