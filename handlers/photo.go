package handlers

import (
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"

	"cashup-backend/imaging"
	"cashup-backend/ledger"
	"cashup-backend/uploads"
)

type PhotoHandler struct {
	ledger   *ledger.Ledger
	uploads  *uploads.Store
	analyzer imaging.Analyzer
}

func NewPhotoHandler(l *ledger.Ledger, u *uploads.Store, analyzer imaging.Analyzer) *PhotoHandler {
	if analyzer == nil {
		analyzer = imaging.NopAnalyzer{}
	}
	return &PhotoHandler{ledger: l, uploads: u, analyzer: analyzer}
}

// Submit accepts a multipart photo upload, stores the file, hashes it, and
// hands the ledger the submission.
func (h *PhotoHandler) Submit(c *gin.Context) {
	festivalID := c.Param("festivalId")
	userID := c.PostForm("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "userId is required"})
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "an image file is required"})
		return
	}
	if file.Size > uploads.MaxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"message": "image exceeds the 5MB limit"})
		return
	}

	lat := parseCoord(c.PostForm("lat"))
	lng := parseCoord(c.PostForm("lng"))

	src, err := file.Open()
	if err != nil {
		writeError(c, err)
		return
	}
	defer src.Close()

	publicPath, filePath, err := h.uploads.Save(file.Filename, src)
	if err != nil {
		writeError(c, err)
		return
	}

	stored, err := os.Open(filePath)
	if err != nil {
		writeError(c, err)
		return
	}
	hash, err := imaging.AverageHash(stored)
	stored.Close()
	if err != nil {
		os.Remove(filePath)
		c.JSON(http.StatusBadRequest, gin.H{"message": "the image could not be read"})
		return
	}

	analysis, err := h.analyzer.Analyze(c, filePath)
	if err != nil {
		// Detection is best-effort metadata; never block a submission on it.
		log.Printf("photo analysis failed: %v", err)
		analysis = nil
	}

	result, err := h.ledger.SubmitPhoto(c, ledger.SubmitPhotoInput{
		FestivalID: festivalID,
		UserID:     userID,
		ImageURL:   publicPath,
		Hash:       hash,
		Lat:        lat,
		Lng:        lng,
		Analysis:   analysis,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"photo":   result.Photo,
		"summary": result.Summary,
		"message": "+" + strconv.Itoa(result.Photo.Points) + " points credited, pending a bin scan",
	})
}

func parseCoord(raw string) *float64 {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}
