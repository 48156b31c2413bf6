package delivery

import (
	"net/http"

	"github.com/Gargooie/Order-Management-API/internal/domain"
	"github.com/Gargooie/Order-Management-API/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ClientHandler struct {
	useCase usecase.ClientUseCase
	log     *logrus.Logger
}

func NewClientHandler(uc usecase.ClientUseCase, logger *logrus.Logger) *ClientHandler {
	return &ClientHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *ClientHandler) RegisterRoutes(router gin.IRouter) {
	clients := router.Group("/clients")
	{
		clients.POST("", h.CreateClient)
		clients.GET("", h.ListClients)
		clients.GET("/:id", h.GetClientByID)
	}
}

func (h *ClientHandler) CreateClient(c *gin.Context) {
	var requestBody struct {
		Name    string `json:"name"`
		Address string `json:"address"`
	}
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		h.log.Warnf("Failed to bind JSON for create client: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	client := domain.Client{Name: requestBody.Name, Address: requestBody.Address}
	createdClient, err := h.useCase.CreateClient(&client)
	if err != nil {
		h.log.Warnf("Failed to create client '%s': %v", requestBody.Name, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to create client: "+err.Error())
		return
	}

	h.log.Infof("Client %d created successfully", createdClient.ID)
	SuccessResponse(c, http.StatusCreated, "Client created successfully", createdClient)
}

func (h *ClientHandler) ListClients(c *gin.Context) {
	clients, err := h.useCase.ListClients()
	if err != nil {
		h.log.Errorf("Failed to list clients: %v", err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to retrieve clients")
		return
	}
	SuccessResponse(c, http.StatusOK, "Clients retrieved successfully", clients)
}

func (h *ClientHandler) GetClientByID(c *gin.Context) {
	id, ok := pathID(c, h.log, "id", "client")
	if !ok {
		return
	}

	client, err := h.useCase.GetClientByID(id)
	if err != nil {
		h.log.Warnf("Failed to get client %d: %v", id, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to retrieve client: "+err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Client retrieved successfully", client)
}
