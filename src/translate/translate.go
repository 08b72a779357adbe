// Package translate turns extracted text into a translation plus the detected
// source language.
package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"screen-translate/src/logutil"
)

var ErrEmptyResponse = errors.New("translate: empty response")

type Result struct {
	Text           string
	Translation    string
	SourceLanguage string
	TargetLanguage string
}

type Translator interface {
	Translate(ctx context.Context, text, target string) (Result, error)
}

// Completer is the slice of the LLM client the translator needs.
type Completer interface {
	Complete(ctx context.Context, system, user string, temperature float64, maxTokens int) (string, error)
}

const systemPrompt = `You translate game chat and short on-screen text.
Reply with a single JSON object and nothing else:
{"translation": "<text in the target language>", "source_language": "<ISO 639-1 code of the input>"}
Keep one output line per input line and keep "Name: message" prefixes unchanged.
Do not include explanations or the original text.`

type LLMTranslator struct {
	c Completer
}

func NewLLM(c Completer) *LLMTranslator {
	return &LLMTranslator{c: c}
}

type llmReply struct {
	Translation    string `json:"translation"`
	SourceLanguage string `json:"source_language"`
}

func (t *LLMTranslator) Translate(ctx context.Context, text, target string) (Result, error) {
	res := Result{Text: text, TargetLanguage: target}
	if strings.TrimSpace(text) == "" {
		res.Text = ""
		return res, nil
	}

	var user strings.Builder
	fmt.Fprintf(&user, "Target language: %s (%s)\n", LanguageName(target), target)
	if LikelyPortuguese(text) {
		user.WriteString("The text is most likely Brazilian Portuguese with gaming slang.\n")
	}
	user.WriteString("\nText:\n")
	user.WriteString(text)

	raw, err := t.c.Complete(ctx, systemPrompt, user.String(), 0.3, 1000)
	if err != nil {
		return Result{}, err
	}
	logutil.Debugf("translate: raw reply %s", logutil.Sanitize(raw))

	reply := parseReply(raw)
	if sameLanguage(reply.SourceLanguage, target) {
		res.SourceLanguage = reply.SourceLanguage
		res.Translation = text
		return res, nil
	}
	if strings.TrimSpace(reply.Translation) == "" {
		return Result{}, ErrEmptyResponse
	}
	res.Translation = reply.Translation
	res.SourceLanguage = reply.SourceLanguage
	return res, nil
}

// parseReply extracts the JSON object from the reply. Models that ignore the
// format get their cleaned text used as the translation, with no source
// language.
func parseReply(raw string) llmReply {
	s := stripFences(raw)
	if i, j := strings.Index(s, "{"), strings.LastIndex(s, "}"); i >= 0 && j > i {
		var r llmReply
		if err := json.Unmarshal([]byte(s[i:j+1]), &r); err == nil {
			r.Translation = strings.TrimSpace(r.Translation)
			r.SourceLanguage = strings.TrimSpace(r.SourceLanguage)
			return r
		}
	}
	return llmReply{Translation: stripIntro(s)}
}
