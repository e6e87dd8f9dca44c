// Package report writes the merged factor table and its LCM.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"lcm-pool/internal/factor"
)

// Text は "prime : exponent" を素数の昇順に書き、最後に LCM を書く
func Text(w io.Writer, t factor.Table) error {
	for _, term := range t.Terms() {
		if _, err := fmt.Fprintf(w, "%d : %d\n", term.Prime, term.Exponent); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Least common multiple is %s\n", factor.BigLCM(t))
	return err
}

// Document は JSON 出力の形式
type Document struct {
	Factors []factor.Term `json:"factors"`
	LCM     string        `json:"lcm"`
	Fits64  bool          `json:"fits_uint64"`
}

// NewDocument はテーブルから JSON 出力用の構造体を作る
func NewDocument(t factor.Table) Document {
	_, err := factor.LCM(t)
	return Document{
		Factors: t.Terms(),
		LCM:     factor.BigLCM(t).String(),
		Fits64:  err == nil,
	}
}

// JSON は Document を整形して書き出す
func JSON(w io.Writer, t factor.Table) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewDocument(t)); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
