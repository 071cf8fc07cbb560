package mongo

import (
	"testing"
	"time"

	"github.com/couchcryptid/highway-survey-etl/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

func ptr[T any](v T) *T { return &v }

func testSegment() domain.Segment {
	return domain.Segment{
		Highway:       "NH44",
		StartChainage: ptr(1000.0),
		EndChainage:   ptr(1500.0),
		Structure:     "plain",
		IRILimit:      ptr(2400.0),
		Lanes: []domain.Lane{{
			LaneID:    "L1",
			StartLat:  ptr(26.1),
			StartLng:  ptr(76.2),
			Roughness: ptr(3000.0),
			Status: domain.LaneStatus{
				Roughness:    domain.StatusCritical,
				RutDepth:     domain.StatusNormal,
				CrackPercent: domain.StatusNormal,
				Ravelling:    domain.StatusNormal,
			},
		}},
		ImportID:   "run-1",
		ImportedAt: time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

func TestDocumentMapping(t *testing.T) {
	seg := testSegment()

	got := fromDocument(toDocument(seg))

	if diff := cmp.Diff(seg, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDocumentBSONShape(t *testing.T) {
	data, err := bson.Marshal(toDocument(testSegment()))
	require.NoError(t, err)
	doc := bson.Raw(data)

	_, err = doc.LookupErr("_id")
	assert.Error(t, err, "the server assigns the ID")
	_, err = doc.LookupErr("remark")
	assert.Error(t, err)
	_, err = doc.LookupErr("Rutting_Limit")
	assert.Error(t, err)

	assert.Equal(t, bsontype.Null, doc.Lookup("segmentLength").Type, "absent values are stored as null")
	assert.Equal(t, 2400.0, doc.Lookup("IRI_Limit").Double())
	assert.Equal(t, "run-1", doc.Lookup("importId").StringValue())
	assert.Equal(t, bsontype.DateTime, doc.Lookup("created_at").Type)

	assert.Equal(t, "L1", doc.Lookup("lanes", "0", "laneId").StringValue())
	assert.Equal(t, bsontype.Null, doc.Lookup("lanes", "0", "endLat").Type)
	assert.Equal(t, "critical", doc.Lookup("lanes", "0", "status", "roughness").StringValue())
	assert.Equal(t, "normal", doc.Lookup("lanes", "0", "status", "ravelling").StringValue())
}
