package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/tv-ad-booking/internal/middleware"
    "github.com/iliyamo/tv-ad-booking/internal/service"
)

// CatalogHandler serves channels and advertiser creatives.
type CatalogHandler struct {
    Catalog *service.Catalog
}

func NewCatalogHandler(cat *service.Catalog) *CatalogHandler {
    return &CatalogHandler{Catalog: cat}
}

type channelReq struct {
    Name              string `json:"name" validate:"required,max=120"`
    Description       string `json:"description" validate:"max=2000"`
    Category          string `json:"category" validate:"max=60"`
    AverageViewership int64  `json:"average_viewership" validate:"gte=0"`
}

type adReq struct {
    Title        string `json:"title" validate:"required,max=200"`
    Description  string `json:"description" validate:"max=4000"`
    MediaType    string `json:"media_type" validate:"required,oneof=image video"`
    MediaURL     string `json:"media_url" validate:"required,url"`
    ThumbnailURL string `json:"thumbnail_url" validate:"omitempty,url"`
}

// ListChannels handles GET /v1/channels.
func (h *CatalogHandler) ListChannels(c echo.Context) error {
    list, err := h.Catalog.ListChannels(c.Request().Context())
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"channels": list})
}

// CreateChannel handles POST /v1/admin/channels.
func (h *CatalogHandler) CreateChannel(c echo.Context) error {
    var req channelReq
    if err := bind(c, &req); err != nil {
        return respondError(c, err)
    }
    ch, err := h.Catalog.CreateChannel(c.Request().Context(), service.ChannelInput{
        Name: req.Name, Description: req.Description, Category: req.Category, AverageViewership: req.AverageViewership,
    })
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusCreated, ch)
}

// CreateAd handles POST /v1/ads.
func (h *CatalogHandler) CreateAd(c echo.Context) error {
    uid, err := middleware.UserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req adReq
    if err := bind(c, &req); err != nil {
        return respondError(c, err)
    }
    ad, err := h.Catalog.CreateAd(c.Request().Context(), service.AdInput{
        AdvertiserID:   uid,
        AdvertiserName: middleware.DisplayName(c),
        Title:          req.Title,
        Description:    req.Description,
        MediaType:      req.MediaType,
        MediaURL:       req.MediaURL,
        ThumbnailURL:   req.ThumbnailURL,
    })
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusCreated, ad)
}

// ListMyAds handles GET /v1/my-ads.
func (h *CatalogHandler) ListMyAds(c echo.Context) error {
    uid, err := middleware.UserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    list, err := h.Catalog.ListAds(c.Request().Context(), uid)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"ads": list})
}
