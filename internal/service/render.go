package service

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

var ugcPolicy = bluemonday.UGCPolicy()

// RenderMarkdown 将 Markdown 正文渲染为净化后的 HTML。
// 输出一律过一遍 UGC 白名单，防止正文夹带脚本。
func RenderMarkdown(content string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return ugcPolicy.Sanitize(buf.String()), nil
}

// SanitizeUGC 净化用户提交的富文本片段（评论等）
func SanitizeUGC(content string) string {
	return ugcPolicy.Sanitize(content)
}
