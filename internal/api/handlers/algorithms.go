package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ts-objective/internal/api/models"
	"ts-objective/internal/model"
)

var algorithmDescriptions = map[model.Algorithm]string{
	model.AlgorithmNashSutcliff: "Sum of squared errors over the observed variance (1 - NSE); 0 is a perfect fit.",
	model.AlgorithmRMSE:         "Root mean square error.",
	model.AlgorithmMAE:          "Square root of the mean absolute error.",
}

// ListAlgorithms handles GET /api/v1/algorithms
func ListAlgorithms(c *gin.Context) {
	out := make([]models.AlgorithmInfo, 0, len(model.Algorithms()))
	for _, a := range model.Algorithms() {
		out = append(out, models.AlgorithmInfo{
			Name:        string(a),
			Description: algorithmDescriptions[a],
			LowerBetter: true,
		})
	}
	c.JSON(http.StatusOK, gin.H{"algorithms": out})
}
