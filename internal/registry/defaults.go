package registry

import (
	domain "github.com/Drayarch/genlayer-intelligent-contracts/internal/entity"
)

// Defaults returns the demo seed set. Fine for the testnet; production
// deployments override it with a file, sealed file, or Vault source.
func Defaults() []domain.KeyRecord {
	return []domain.KeyRecord{
		{
			Service:     "weather",
			Key:         "bbe7e79a414f003442cd9662246f7be7",
			Provider:    "OpenWeatherMap",
			Description: "Get weather data for any city",
		},
		{
			Service:     "price",
			Key:         "your-coingecko-api-key-here",
			Provider:    "CoinGecko",
			Description: "Get cryptocurrency prices",
		},
		{
			Service:     "social",
			Key:         "your-twitter-api-key-here",
			Provider:    "Twitter/Web Scraping",
			Description: "Scrape and analyze web content",
		},
	}
}
