package mongo

import (
	"time"

	"github.com/couchcryptid/highway-survey-etl/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// segmentDocument is the stored shape of a domain.Segment. Absent optional
// values are written as BSON null.
type segmentDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Highway       string             `bson:"highway"`
	StartChainage *float64           `bson:"startChainage"`
	EndChainage   *float64           `bson:"endChainage"`
	SegmentLength *float64           `bson:"segmentLength"`
	Structure     string             `bson:"structure"`
	Remark        *string            `bson:"remark,omitempty"`

	IRILimit       *float64 `bson:"IRI_Limit,omitempty"`
	RuttingLimit   *float64 `bson:"Rutting_Limit,omitempty"`
	CrackingLimit  *float64 `bson:"Cracking_Limit,omitempty"`
	RavellingLimit *float64 `bson:"Ravelling_Limit,omitempty"`

	Lanes     []laneDocument `bson:"lanes"`
	ImportID  string         `bson:"importId,omitempty"`
	CreatedAt time.Time      `bson:"created_at"`
}

type laneDocument struct {
	LaneID           string         `bson:"laneId"`
	StartLat         *float64       `bson:"startLat"`
	StartLng         *float64       `bson:"startLng"`
	EndLat           *float64       `bson:"endLat"`
	EndLng           *float64       `bson:"endLng"`
	Roughness        *float64       `bson:"roughness"`
	RutDepth         *float64       `bson:"rutDepth"`
	CrackPercent     *float64       `bson:"crackPercent"`
	RavellingPercent *float64       `bson:"ravellingPercent"`
	Status           statusDocument `bson:"status"`
}

type statusDocument struct {
	Roughness    string `bson:"roughness"`
	RutDepth     string `bson:"rutDepth"`
	CrackPercent string `bson:"crackPercent"`
	Ravelling    string `bson:"ravelling"`
}

func toDocument(s domain.Segment) segmentDocument {
	lanes := make([]laneDocument, len(s.Lanes))
	for i, l := range s.Lanes {
		lanes[i] = laneDocument{
			LaneID:           l.LaneID,
			StartLat:         l.StartLat,
			StartLng:         l.StartLng,
			EndLat:           l.EndLat,
			EndLng:           l.EndLng,
			Roughness:        l.Roughness,
			RutDepth:         l.RutDepth,
			CrackPercent:     l.CrackPercent,
			RavellingPercent: l.RavellingPercent,
			Status: statusDocument{
				Roughness:    string(l.Status.Roughness),
				RutDepth:     string(l.Status.RutDepth),
				CrackPercent: string(l.Status.CrackPercent),
				Ravelling:    string(l.Status.Ravelling),
			},
		}
	}
	return segmentDocument{
		Highway:        s.Highway,
		StartChainage:  s.StartChainage,
		EndChainage:    s.EndChainage,
		SegmentLength:  s.SegmentLength,
		Structure:      s.Structure,
		Remark:         s.Remark,
		IRILimit:       s.IRILimit,
		RuttingLimit:   s.RuttingLimit,
		CrackingLimit:  s.CrackingLimit,
		RavellingLimit: s.RavellingLimit,
		Lanes:          lanes,
		ImportID:       s.ImportID,
		CreatedAt:      s.ImportedAt,
	}
}

func fromDocument(d segmentDocument) domain.Segment {
	lanes := make([]domain.Lane, len(d.Lanes))
	for i, l := range d.Lanes {
		lanes[i] = domain.Lane{
			LaneID:           l.LaneID,
			StartLat:         l.StartLat,
			StartLng:         l.StartLng,
			EndLat:           l.EndLat,
			EndLng:           l.EndLng,
			Roughness:        l.Roughness,
			RutDepth:         l.RutDepth,
			CrackPercent:     l.CrackPercent,
			RavellingPercent: l.RavellingPercent,
			Status: domain.LaneStatus{
				Roughness:    domain.Status(l.Status.Roughness),
				RutDepth:     domain.Status(l.Status.RutDepth),
				CrackPercent: domain.Status(l.Status.CrackPercent),
				Ravelling:    domain.Status(l.Status.Ravelling),
			},
		}
	}
	return domain.Segment{
		Highway:        d.Highway,
		StartChainage:  d.StartChainage,
		EndChainage:    d.EndChainage,
		SegmentLength:  d.SegmentLength,
		Structure:      d.Structure,
		Remark:         d.Remark,
		IRILimit:       d.IRILimit,
		RuttingLimit:   d.RuttingLimit,
		CrackingLimit:  d.CrackingLimit,
		RavellingLimit: d.RavellingLimit,
		Lanes:          lanes,
		ImportID:       d.ImportID,
		ImportedAt:     d.CreatedAt.UTC(),
	}
}
