package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/codes"

	"github.com/Dacchu2004/lawGuide/datatypes"
	"github.com/Dacchu2004/lawGuide/language"
	"github.com/Dacchu2004/lawGuide/retrieval"
	"github.com/Dacchu2004/lawGuide/translate"
)

// Summarizer explains one section's text in the requested language.
// Satisfied by pipeline.SectionSummarizer.
type Summarizer interface {
	Summarize(ctx context.Context, text, targetLanguage string) string
}

// HandleSearchSections serves POST /search-sections: the law-browser
// surface. Queries arrive in any supported language; matching runs over
// the English index and results are localized back.
func HandleSearchSections(retriever retrieval.SectionRetriever, translator translate.Translator, defaultTopK int) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := handlerTracer.Start(c.Request.Context(), "HandleSearchSections")
		defer span.End()

		var request datatypes.SectionSearchRequest
		if err := c.BindJSON(&request); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		request.EnsureDefaults(defaultTopK)
		if err := request.Validate(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		lang := language.Detect(request.QueryText, request.UserLanguage)
		queryEN := translator.ToEnglish(ctx, request.QueryText, lang)
		if queryEN == "" {
			queryEN = request.QueryText
		}

		sections, err := retriever.Search(ctx, queryEN, request.UserState, request.TopK)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Section search failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Search backend unavailable"})
			return
		}

		results := make([]datatypes.SectionSearchResult, 0, len(sections))
		for _, s := range sections {
			textPrimary := s.Text
			if lang != "en" {
				if localized := translator.FromEnglish(ctx, s.Text, lang); localized != "" {
					textPrimary = localized
				}
			}
			results = append(results, datatypes.SectionSearchResult{
				Act:          s.Act,
				Section:      s.Section,
				TextPrimary:  textPrimary,
				TextEnglish:  s.Text,
				Jurisdiction: s.Jurisdiction,
				SourceLink:   s.SourceLink,
			})
		}

		c.JSON(http.StatusOK, datatypes.SectionSearchResponse{
			DetectedLanguage: lang,
			QueryText:        request.QueryText,
			Results:          results,
		})
	}
}

// HandleSummarizeSection serves POST /summarize-section.
func HandleSummarizeSection(summarizer Summarizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := handlerTracer.Start(c.Request.Context(), "HandleSummarizeSection")
		defer span.End()

		var request datatypes.SummaryRequest
		if err := c.BindJSON(&request); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		if err := request.Validate(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		lang := language.Resolve(request.UserLanguage)
		summary := summarizer.Summarize(ctx, request.Text, lang)
		c.JSON(http.StatusOK, datatypes.SummaryResponse{Summary: summary})
	}
}
