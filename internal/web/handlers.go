package web

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"newsbrief/internal/domain"
)

type articlesResponse struct {
	Topic    string           `json:"topic"`
	Count    int              `json:"count"`
	Articles []domain.Article `json:"articles"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// index renders the topic form. A topic coming from the submitted form or
// from the query string runs the pipeline and renders its results below.
func (h *handler) index(c *gin.Context) {
	topic := strings.TrimSpace(c.PostForm("topic"))
	if topic == "" {
		topic = strings.TrimSpace(c.Query("topic"))
	}

	articles := []domain.Article{}
	if topic != "" {
		articles = h.run(c, domain.SearchQuery{Topic: topic})
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"Topic":    topic,
		"Searched": topic != "",
		"Articles": articles,
	})
}

func (h *handler) articles(c *gin.Context) {
	topic := strings.TrimSpace(c.Query("topic"))
	if topic == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "topic is required"})

		return
	}

	var limit int
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > domain.MaxResultLimit {
			c.JSON(http.StatusBadRequest, errorResponse{
				Error: "limit must be an integer in 1.." + strconv.Itoa(domain.MaxResultLimit),
			})

			return
		}
		limit = parsed
	}

	articles := h.run(c, domain.SearchQuery{Topic: topic, Limit: limit})

	c.JSON(http.StatusOK, articlesResponse{
		Topic:    topic,
		Count:    len(articles),
		Articles: articles,
	})
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handler) run(c *gin.Context, query domain.SearchQuery) []domain.Article {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.requestTimeout)
	defer cancel()

	articles := h.runner.RunQuery(ctx, query)
	if articles == nil {
		articles = []domain.Article{}
	}

	h.log.InfoContext(ctx, "Topic is processed",
		"topic", query.Topic,
		"limit", query.Limit,
		"articleCount", len(articles))

	return articles
}
