package seed

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gosimple/slug"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	catalogdomain "github.com/greenmandi/storefront/internal/catalog/domain"
	farmerdomain "github.com/greenmandi/storefront/internal/farmer/domain"
	"github.com/greenmandi/storefront/pkg/db"
)

type product struct {
	en       string
	hi       string
	kn       string
	price    float64
	category string
	unit     string
	organic  bool
	rating   float64
	reviews  int
}

var products = []product{
	{en: "Tomato", hi: "टमाटर", kn: "ಟೊಮೆಟೊ", price: 40, category: "vegetables", unit: "kg", organic: false, rating: 4.3, reviews: 182},
	{en: "Okra", hi: "भिंडी", kn: "ಬೆಂಡೆಕಾಯಿ", price: 60, category: "vegetables", unit: "kg", organic: true, rating: 4.5, reviews: 96},
	{en: "Spinach", hi: "पालक", kn: "ಪಾಲಕ್", price: 30, category: "leafy-greens", unit: "bunch", organic: true, rating: 4.6, reviews: 141},
	{en: "Coriander", hi: "धनिया", kn: "ಕೊತ್ತಂಬರಿ", price: 15, category: "leafy-greens", unit: "bunch", organic: false, rating: 4.2, reviews: 67},
	{en: "Potato", hi: "आलू", kn: "ಆಲೂಗಡ್ಡೆ", price: 35, category: "vegetables", unit: "kg", organic: false, rating: 4.1, reviews: 240},
	{en: "Onion", hi: "प्याज", kn: "ಈರುಳ್ಳಿ", price: 45, category: "vegetables", unit: "kg", organic: false, rating: 4.0, reviews: 310},
	{en: "Banana", hi: "केला", kn: "ಬಾಳೆಹಣ್ಣು", price: 55, category: "fruits", unit: "dozen", organic: true, rating: 4.7, reviews: 203},
	{en: "Mango", hi: "आम", kn: "ಮಾವಿನ ಹಣ್ಣು", price: 120, category: "fruits", unit: "kg", organic: true, rating: 4.8, reviews: 415},
	{en: "Pomegranate", hi: "अनार", kn: "ದಾಳಿಂಬೆ", price: 160, category: "fruits", unit: "kg", organic: false, rating: 4.4, reviews: 88},
	{en: "Turmeric Powder", hi: "हल्दी पाउडर", kn: "ಅರಿಶಿನ ಪುಡಿ", price: 90, category: "spices", unit: "250g", organic: true, rating: 4.9, reviews: 152},
	{en: "Basmati Rice", hi: "बासमती चावल", kn: "ಬಾಸ್ಮತಿ ಅಕ್ಕಿ", price: 180, category: "grains", unit: "kg", organic: false, rating: 4.6, reviews: 529},
	{en: "Toor Dal", hi: "तूर दाल", kn: "ತೊಗರಿ ಬೇಳೆ", price: 140, category: "pulses", unit: "kg", organic: true, rating: 4.5, reviews: 374},
	{en: "Cow Ghee", hi: "गाय का घी", kn: "ಹಸುವಿನ ತುಪ್ಪ", price: 650, category: "dairy", unit: "500ml", organic: true, rating: 4.9, reviews: 267},
	{en: "Paneer", hi: "पनीर", kn: "ಪನೀರ್", price: 110, category: "dairy", unit: "200g", organic: false, rating: 4.3, reviews: 198},
}

type farmer struct {
	name           string
	farmName       string
	location       string
	certifications []string
	rating         float64
}

var farmers = []farmer{
	{name: "Ravi Kumar", farmName: "Green Valley Farm", location: "Mysuru, Karnataka", certifications: []string{"India Organic", "PGS-India"}, rating: 4.8},
	{name: "Lakshmi Devi", farmName: "Sunrise Organics", location: "Kolar, Karnataka", certifications: []string{"India Organic"}, rating: 4.6},
	{name: "Abdul Rashid", farmName: "Cauvery Greens", location: "Mandya, Karnataka", certifications: nil, rating: 4.4},
	{name: "Manjunath Gowda", farmName: "Malnad Spice Garden", location: "Chikkamagaluru, Karnataka", certifications: []string{"India Organic", "Rainforest Alliance"}, rating: 4.9},
}

// EnsureCatalog seeds the product catalog on first boot. An already-seeded
// catalog is left untouched so admin edits survive restarts. Duplicate-key
// failures are skipped: a concurrent first boot may have won the insert.
func EnsureCatalog(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	return conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&catalogdomain.Product{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		now := time.Now().UTC()
		for _, p := range products {
			id := slug.Make(p.en)
			record := catalogdomain.Product{
				ID: id,
				Name: datatypes.JSONMap{
					"en": p.en,
					"hi": p.hi,
					"kn": p.kn,
				},
				Price:     p.price,
				Image:     "/media/catalog/" + id + ".jpg",
				Category:  p.category,
				InStock:   true,
				Rating:    p.rating,
				Reviews:   p.reviews,
				Organic:   p.organic,
				Unit:      p.unit,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := tx.Create(&record).Error; err != nil {
				if db.IsDuplicateKeyErr(err) {
					continue
				}
				return err
			}
		}
		return nil
	})
}

// EnsureFarmers seeds the farmer profiles shown on seller pages.
func EnsureFarmers(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	return conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&farmerdomain.Farmer{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		now := time.Now().UTC()
		for _, f := range farmers {
			var certs datatypes.JSON
			if len(f.certifications) > 0 {
				encoded, err := json.Marshal(f.certifications)
				if err != nil {
					return err
				}
				certs = datatypes.JSON(encoded)
			}
			record := farmerdomain.Farmer{
				ID:             slug.Make(f.farmName),
				Name:           f.name,
				FarmName:       f.farmName,
				Location:       f.location,
				Certifications: certs,
				Rating:         f.rating,
				CreatedAt:      now,
			}
			if err := tx.Create(&record).Error; err != nil {
				if db.IsDuplicateKeyErr(err) {
					continue
				}
				return err
			}
		}
		return nil
	})
}
