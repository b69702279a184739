package mongostore

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"storefront/internal/model"
)

// activeFilter selects active documents, optionally narrowed by extra.
func activeFilter(extra bson.M) bson.M {
	f := bson.M{"isActive": true}
	for k, v := range extra {
		f[k] = v
	}
	return f
}

// productFilter builds the query document for a catalog listing.
func productFilter(f model.ProductFilter) bson.M {
	q := activeFilter(nil)
	if f.Category != "" {
		q["category"] = string(f.Category)
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price := bson.M{}
		if f.MinPrice != nil {
			price["$gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			price["$lte"] = *f.MaxPrice
		}
		q["price"] = price
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		q["$text"] = bson.M{"$search": term}
	}
	return q
}

// productPatchSet builds the $set document for a patch. The slug is never
// touched.
func productPatchSet(p model.ProductPatch, now time.Time) (bson.M, error) {
	set := bson.M{"updatedAt": now}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Price != nil {
		price, err := toDecimal128(*p.Price)
		if err != nil {
			return nil, err
		}
		set["price"] = price
	}
	if p.Category != nil {
		set["category"] = string(*p.Category)
	}
	if p.Stock != nil {
		set["stock"] = *p.Stock
	}
	if p.Image != nil {
		set["image"] = *p.Image
	}
	return set, nil
}

func userPatchSet(p model.UserPatch, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Email != nil {
		set["email"] = *p.Email
	}
	if p.Role != nil {
		set["role"] = string(*p.Role)
	}
	return set
}

// stockFilter matches an active product whose stock can absorb delta.
func stockFilter(id string, delta int) bson.M {
	return activeFilter(bson.M{"_id": id, "stock": bson.M{"$gte": -delta}})
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}}
