package notify

import (
	"bytes"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"strings"
	"time"
)

const (
	notApplicable = "N/A"
	noneMarker    = "- (none)"
	signature     = "Checked by web-monitor"
)

// Summary は、通知本文の組み立てに必要な1回分の集計結果です。
type Summary struct {
	SearchText string
	Selector   string
	Hits       []string // 検出されたURL
	Misses     []string // 未検出および取得失敗のURL (表示用の文字列)
	Total      int      // チェックしたURLの総数
}

// Message は、SMTPに渡す直前の件名と本文です。
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Compose は、集計結果から件名と本文を組み立てます。
func Compose(s Summary) Message {
	subject := fmt.Sprintf("[ALERT] Found '%s' on %d/%d URL(s)", s.SearchText, len(s.Hits), s.Total)

	selector := s.Selector
	if selector == "" {
		selector = notApplicable
	}

	lines := []string{
		fmt.Sprintf("Search text: '%s'", s.SearchText),
		fmt.Sprintf("CSS selector: '%s'", selector),
		"",
		"Found on:",
	}
	for _, u := range s.Hits {
		lines = append(lines, "- "+u)
	}

	lines = append(lines, "", "Not found on:")
	if len(s.Misses) == 0 {
		lines = append(lines, noneMarker)
	}
	for _, u := range s.Misses {
		lines = append(lines, "- "+u)
	}
	lines = append(lines, "", signature)

	return Message{
		Subject: subject,
		Body:    strings.Join(lines, "\n"),
	}
}

// Bytes は、RFC 5322 形式のメッセージを生成します。
// 本文は quoted-printable、件名は非ASCIIを含む場合のみ RFC 2047 でエンコードします。
func (m Message) Bytes(now time.Time) ([]byte, error) {
	var buf bytes.Buffer

	headers := []string{
		"From: " + sanitizeHeader(m.From),
		"To: " + sanitizeHeader(m.To),
		"Subject: " + mime.QEncoding.Encode("utf-8", sanitizeHeader(m.Subject)),
		"Date: " + now.Format(time.RFC1123Z),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
		"Content-Transfer-Encoding: quoted-printable",
	}
	for _, h := range headers {
		buf.WriteString(h + "\r\n")
	}
	buf.WriteString("\r\n")

	qp := quotedprintable.NewWriter(&buf)
	if _, err := qp.Write([]byte(strings.ReplaceAll(m.Body, "\n", "\r\n"))); err != nil {
		return nil, fmt.Errorf("本文のエンコードに失敗しました: %w", err)
	}
	if err := qp.Close(); err != nil {
		return nil, fmt.Errorf("本文のエンコードに失敗しました: %w", err)
	}
	return buf.Bytes(), nil
}

// sanitizeHeader は、ヘッダーインジェクションを防ぐため改行を取り除きます。
func sanitizeHeader(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	return strings.ReplaceAll(s, "\n", "")
}
