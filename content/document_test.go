package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrontMatter(t *testing.T) {
	data := []byte(`---
layout: post
title: "Chain of Responsibility with C# Delegates"
date: 2019-02-20
author: Erin Gen
tags: [csharp, patterns]
excerpt: "Delegates carry the chain for you."
---

The body starts here.
`)

	doc, err := Parse("post.md", data)
	require.NoError(t, err)

	assert.True(t, doc.HasFM)
	assert.Equal(t, "post", doc.Meta.Layout)
	assert.Equal(t, "Chain of Responsibility with C# Delegates", doc.Meta.Title)
	assert.Equal(t, "2019-02-20", doc.Meta.Date)
	assert.Equal(t, "Erin Gen", doc.Meta.Author)
	assert.Equal(t, []string{"csharp", "patterns"}, doc.Meta.Tags)
	assert.Equal(t, "Delegates carry the chain for you.", doc.Meta.Excerpt)
	assert.Equal(t, "\nThe body starts here.\n", doc.Body)
	// Lines 1-8 are the front-matter block and its delimiters.
	assert.Equal(t, 9, doc.BodyLn)
}

func TestParseNoFrontMatter(t *testing.T) {
	doc, err := Parse("plain.md", []byte("Just a body.\n"))
	require.NoError(t, err)

	assert.False(t, doc.HasFM)
	assert.Equal(t, "Just a body.\n", doc.Body)
	assert.Equal(t, 1, doc.BodyLn)
}

func TestParseUnclosedFrontMatter(t *testing.T) {
	_, err := Parse("broken.md", []byte("---\ntitle: Oops\n"))
	require.ErrorIs(t, err, ErrUnclosedFrontMatter)
}

func TestParseDelimiterInsideValue(t *testing.T) {
	// A "---" that is not at the start of a line must not close the block.
	data := []byte("---\ntitle: \"a --- b\"\n---\nbody\n")
	doc, err := Parse("tricky.md", data)
	require.NoError(t, err)
	assert.Equal(t, "a --- b", doc.Meta.Title)
	assert.Equal(t, "body\n", doc.Body)
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := Parse("bad.md", []byte("---\ntitle: [unclosed\n---\nbody\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.md")
}

func TestParsePublishedFlag(t *testing.T) {
	doc, err := Parse("draft.md", []byte("---\ntitle: Draft\npublished: false\n---\nbody\n"))
	require.NoError(t, err)
	require.NotNil(t, doc.Meta.Published)
	assert.False(t, *doc.Meta.Published)

	doc, err = Parse("live.md", []byte("---\ntitle: Live\n---\nbody\n"))
	require.NoError(t, err)
	assert.Nil(t, doc.Meta.Published)
}

func TestSplitPostFilename(t *testing.T) {
	tests := []struct {
		stem     string
		wantDate string
		wantSlug string
		wantOK   bool
	}{
		{"2019-02-20-chain-of-responsibility-with-csharp-delegates", "2019-02-20", "chain-of-responsibility-with-csharp-delegates", true},
		{"2024-12-01-hello", "2024-12-01", "hello", true},
		{"about", "", "", false},
		{"2024-hello", "", "", false},
		{"2024-12-01-", "", "", false},
	}

	for _, tt := range tests {
		date, slug, ok := SplitPostFilename(tt.stem)
		assert.Equal(t, tt.wantOK, ok, tt.stem)
		assert.Equal(t, tt.wantDate, date, tt.stem)
		assert.Equal(t, tt.wantSlug, slug, tt.stem)
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{"2019-02-20", "2019-02-20", false},
		{"2019-06-11 08:30:00", "2019-06-11", false},
		{"2019-06-11 08:30", "2019-06-11", false},
		{"2019-06-11T08:30:00Z", "2019-06-11", false},
		{" 2019-02-20 ", "2019-02-20", false},
		{"20 Feb 2019", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := NormalizeDate(tt.raw)
		if tt.wantErr {
			assert.Error(t, err, tt.raw)
			continue
		}
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}
