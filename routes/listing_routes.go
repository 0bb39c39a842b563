package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/trashure/api-go/controllers"
)

func SetupListingRoutes(protected *gin.RouterGroup, listingController *controllers.ListingController) {
	listings := protected.Group("/listings")
	{
		listings.POST("", listingController.CreateListing)
		listings.PUT("/:id", listingController.UpdateListing)
		listings.DELETE("/:id", listingController.DeleteListing)
		listings.POST("/:id/purchase", listingController.PurchaseListing)
	}

	protected.GET("/my/listings", listingController.GetMyListings)
}
