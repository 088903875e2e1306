// Package firestore provides a Firestore implementation of the gofulfill.Storage interface.
//
// Data layout:
//
//	user_map/{userID}      {"plan": "Gold"}
//	report_plan/{feature}  {"Bronze": false, "Silver": true, "Gold": true}
package firestore

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/mihaimyh/gofulfill/pkg/gofulfill"
)

var _ gofulfill.Storage = (*Storage)(nil)

// Storage implements gofulfill.Storage using Google Cloud Firestore
type Storage struct {
	client                 *firestore.Client
	usersCollection        string
	entitlementsCollection string
	planField              string
}

// Config holds Firestore storage configuration
type Config struct {
	// UsersCollection holds one document per user, keyed by user ID
	// Default: "user_map"
	UsersCollection string

	// EntitlementsCollection holds one document per feature, keyed by feature name,
	// with a boolean field per plan
	// Default: "report_plan"
	EntitlementsCollection string

	// PlanField is the field of a user document holding the plan name
	// Default: "plan"
	PlanField string
}

// New creates a new Firestore storage adapter
func New(client *firestore.Client, config Config) (*Storage, error) {
	if client == nil {
		return nil, fmt.Errorf("firestore client is required")
	}

	// Set defaults
	if config.UsersCollection == "" {
		config.UsersCollection = "user_map"
	}
	if config.EntitlementsCollection == "" {
		config.EntitlementsCollection = "report_plan"
	}
	if config.PlanField == "" {
		config.PlanField = "plan"
	}

	return &Storage{
		client:                 client,
		usersCollection:        config.UsersCollection,
		entitlementsCollection: config.EntitlementsCollection,
		planField:              config.PlanField,
	}, nil
}

// HasAccess implements gofulfill.Storage
func (s *Storage) HasAccess(ctx context.Context, userID, feature string) (bool, error) {
	if !validDocID(userID) || !validDocID(feature) {
		return false, nil
	}

	user, err := s.get(ctx, s.usersCollection, userID)
	if err != nil {
		return false, fmt.Errorf("failed to get user plan: %w", err)
	}
	if user == nil {
		return false, nil
	}
	plan := getString(user, s.planField)
	if plan == "" {
		return false, nil
	}

	row, err := s.get(ctx, s.entitlementsCollection, feature)
	if err != nil {
		return false, fmt.Errorf("failed to get feature entitlements: %w", err)
	}
	if row == nil {
		return false, nil
	}

	return getBool(row, plan), nil
}

// UpdatePlan implements gofulfill.Storage
func (s *Storage) UpdatePlan(ctx context.Context, userID, plan string) (int64, error) {
	if !validDocID(userID) {
		return 0, nil
	}

	doc := s.client.Collection(s.usersCollection).Doc(userID)
	_, err := doc.Update(ctx, []firestore.Update{{Path: s.planField, Value: plan}})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to update plan: %w", err)
	}

	return 1, nil
}

// get returns the document data, or nil when the document does not exist
func (s *Storage) get(ctx context.Context, collection, id string) (map[string]interface{}, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}
	if !snap.Exists() {
		return nil, nil
	}
	return snap.Data(), nil
}

// validDocID reports whether id can be used as a document ID without changing
// the addressed path. Anything else cannot match a stored document.
func validDocID(id string) bool {
	if id == "" || id == "." || id == ".." || len(id) > 1500 {
		return false
	}
	if strings.Contains(id, "/") {
		return false
	}
	return !(strings.HasPrefix(id, "__") && strings.HasSuffix(id, "__"))
}

func getString(data map[string]interface{}, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

func getBool(data map[string]interface{}, key string) bool {
	if v, ok := data[key].(bool); ok {
		return v
	}
	return false
}
