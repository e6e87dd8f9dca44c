package input

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"golang.org/x/term"

	"lcm-pool/internal/logger"
)

// Submitter は数を受け取る先（通常は worker.Pool）
type Submitter interface {
	Submit(n uint64) error
}

// Stats は読み込み結果の集計
type Stats struct {
	Read       int  // 読み込んだ数（終端の0を除く）
	Submitted  int  // 投入に成功した数
	OutOfRange int  // 上限超過でスキップした数
	Invalid    int  // 数として解釈できなかったトークン
	Terminated bool // 0 で終了したか（false なら EOF かキャンセル）
}

// Loop は入力ループ
type Loop struct {
	in         io.Reader
	prompt     io.Writer
	outOfRange error
}

// New は r から読む入力ループを作成する。
// outOfRange は Submitter が上限超過時に返すエラー（errors.Is で比較）。
func New(r io.Reader, outOfRange error) *Loop {
	return &Loop{in: r, outOfRange: outOfRange}
}

// NewInteractive は端末からの入力であればプロンプトを表示する入力ループを作成する
func NewInteractive(f *os.File, prompt io.Writer, outOfRange error) *Loop {
	l := New(f, outOfRange)
	if term.IsTerminal(int(f.Fd())) {
		l.prompt = prompt
	}
	return l
}

// Run は 0 か EOF まで読み込み、各数を s に投入する。
// ctx がキャンセルされた場合は次のトークンの前に中断する。
func (l *Loop) Run(ctx context.Context, s Submitter) (Stats, error) {
	var stats Stats

	scanner := bufio.NewScanner(l.in)
	scanner.Split(bufio.ScanWords)

	l.showPrompt()
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		token := scanner.Text()
		n, err := strconv.ParseUint(token, 10, 64)
		if err != nil {
			stats.Invalid++
			logger.Warn("input", "Skipping %q: not a non-negative integer", token)
			l.showPrompt()
			continue
		}

		if n == 0 {
			stats.Terminated = true
			return stats, nil
		}
		stats.Read++

		if err := s.Submit(n); err != nil {
			if l.outOfRange != nil && errors.Is(err, l.outOfRange) {
				stats.OutOfRange++
				logger.Warn("input", "Skipping %d: %v", n, err)
				l.showPrompt()
				continue
			}
			return stats, fmt.Errorf("submit %d: %w", n, err)
		}
		stats.Submitted++
		l.showPrompt()
	}

	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("failed to read input: %w", err)
	}
	return stats, ctx.Err()
}

func (l *Loop) showPrompt() {
	if l.prompt != nil {
		_, _ = fmt.Fprint(l.prompt, "> ")
	}
}
