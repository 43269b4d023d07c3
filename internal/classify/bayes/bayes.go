// Package bayes implements a multinomial naive Bayes classifier over log
// message tokens, with Laplace smoothing and softmax confidence.
package bayes

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/Sidzzzzzzzzzzzz/intelligent-incident-triage/internal/triage"
)

//go:embed data.csv
var defaultTrainingData []byte

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Sample is one labeled training message.
type Sample struct {
	Message  string
	Priority string
}

// Classifier assigns a priority to a message from token statistics. Train
// fully before serving; Classify does not synchronize with Train.
type Classifier struct {
	alpha       float64
	labels      []string
	labelCounts map[string]int
	tokenCounts map[string]map[string]int
	totalTokens map[string]int
	vocab       map[string]struct{}
	totalDocs   int
}

// New creates an untrained classifier with Laplace smoothing alpha.
func New(alpha float64) *Classifier {
	if alpha <= 0 {
		alpha = 1.0
	}
	return &Classifier{
		alpha:       alpha,
		labelCounts: make(map[string]int),
		tokenCounts: make(map[string]map[string]int),
		totalTokens: make(map[string]int),
		vocab:       make(map[string]struct{}),
	}
}

// NewDefault builds a classifier trained on the embedded corpus.
func NewDefault() (*Classifier, error) {
	samples, err := LoadCSV(bytes.NewReader(defaultTrainingData))
	if err != nil {
		return nil, fmt.Errorf("embedded training data: %w", err)
	}
	c := New(1.0)
	c.Train(samples)
	return c, nil
}

// NewFromCSVFile builds a classifier trained on an external corpus file.
func NewFromCSVFile(path string) (*Classifier, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open training data: %w", err)
	}
	defer func() { _ = f.Close() }()

	samples, err := LoadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("training data %s: %w", path, err)
	}
	c := New(1.0)
	c.Train(samples)
	return c, nil
}

// Tokenize produces simple lowercase tokens from text.
func Tokenize(s string) []string {
	s = strings.ToLower(s)
	s = nonAlnum.ReplaceAllString(s, " ")
	return strings.Fields(s)
}

// LoadCSV reads training samples from a message,priority CSV stream.
func LoadCSV(r io.Reader) ([]Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if !strings.EqualFold(header[0], "message") || !strings.EqualFold(header[1], "priority") {
		return nil, fmt.Errorf("unexpected header %q, want message,priority", strings.Join(header, ","))
	}

	var samples []Sample
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		msg := strings.TrimSpace(rec[0])
		pri := strings.ToLower(strings.TrimSpace(rec[1]))
		if msg == "" || pri == "" {
			continue
		}
		samples = append(samples, Sample{Message: msg, Priority: pri})
	}
	if len(samples) == 0 {
		return nil, errors.New("no training samples")
	}
	return samples, nil
}

// Train fits the classifier on labeled samples. The label set is whatever
// the samples carry.
func (c *Classifier) Train(samples []Sample) {
	for _, s := range samples {
		if _, ok := c.labelCounts[s.Priority]; !ok {
			c.labels = append(c.labels, s.Priority)
			c.tokenCounts[s.Priority] = make(map[string]int)
		}
		c.labelCounts[s.Priority]++
		c.totalDocs++

		for _, tok := range Tokenize(s.Message) {
			c.tokenCounts[s.Priority][tok]++
			c.totalTokens[s.Priority]++
			c.vocab[tok] = struct{}{}
		}
	}
	// Fixed label order keeps tie-breaking deterministic.
	sort.Strings(c.labels)
}

// Labels returns the label set learned from training data, sorted.
func (c *Classifier) Labels() []string {
	out := make([]string, len(c.labels))
	copy(out, c.labels)
	return out
}

// Classify implements triage.Classifier.
func (c *Classifier) Classify(_ context.Context, message string) (triage.Classification, error) {
	toks := Tokenize(message)
	if len(toks) == 0 {
		return triage.Classification{}, errors.New("empty message")
	}
	if c.totalDocs == 0 {
		return triage.Classification{}, errors.New("classifier not trained")
	}

	freq := make(map[string]int, len(toks))
	for _, t := range toks {
		freq[t]++
	}

	logScores := make([]float64, len(c.labels))
	totalDocs := float64(c.totalDocs)
	vocabSize := float64(len(c.vocab))
	for i, label := range c.labels {
		prior := (float64(c.labelCounts[label]) + c.alpha) / (totalDocs + c.alpha*float64(len(c.labels)))
		score := math.Log(prior)

		den := float64(c.totalTokens[label]) + c.alpha*vocabSize
		for tok, count := range freq {
			num := float64(c.tokenCounts[label][tok]) + c.alpha
			score += float64(count) * math.Log(num/den)
		}
		logScores[i] = score
	}

	// Softmax over log scores for the confidence.
	maxLog := logScores[0]
	for _, s := range logScores[1:] {
		if s > maxLog {
			maxLog = s
		}
	}
	var sum float64
	probs := make([]float64, len(logScores))
	for i, s := range logScores {
		probs[i] = math.Exp(s - maxLog)
		sum += probs[i]
	}

	best := 0
	for i := range probs {
		probs[i] /= sum
		if probs[i] > probs[best] {
			best = i
		}
	}

	return triage.Classification{Priority: c.labels[best], Confidence: probs[best]}, nil
}
