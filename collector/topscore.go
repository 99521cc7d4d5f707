package collector

import (
	"math"

	"github.com/hupe1980/hybridgo/model"
	"github.com/hupe1980/hybridgo/scorer"
)

// TopScoreCollector gathers the numHits best-scored documents of every
// sub-query. Each sub-query ranks independently in its own bounded queue;
// a document matched by several sub-queries occupies a slot in each.
//
// Once a queue is full, each eviction raises that sub-query's competitive
// floor on the score source, letting the bulk scorer drop hits that can no
// longer make the queue.
type TopScoreCollector struct {
	numHits   int
	threshold *HitsThresholdChecker

	queues             []*hitQueue
	minScoreThresholds []float32
	collectedPerQuery  []int64

	totalHits int64
	relation  model.Relation
	maxScore  float32

	cached []model.TopDocs
}

var _ SearchCollector = (*TopScoreCollector)(nil)

// NewTopScoreCollector creates a score-ordered collector keeping numHits
// hits per sub-query.
func NewTopScoreCollector(numHits int, threshold *HitsThresholdChecker) (*TopScoreCollector, error) {
	if numHits <= 0 {
		return nil, ErrInvalidNumHits
	}
	return &TopScoreCollector{
		numHits:   numHits,
		threshold: threshold,
		relation:  model.RelationEqualTo,
	}, nil
}

// ForSegment implements SearchCollector.
func (c *TopScoreCollector) ForSegment(seg *Segment) (scorer.LeafCollector, error) {
	c.cached = nil
	return &topScoreLeafCollector{parent: c, docBase: seg.DocBase}, nil
}

// TotalHits implements SearchCollector.
func (c *TopScoreCollector) TotalHits() int64 { return c.totalHits }

// MaxScore implements SearchCollector.
func (c *TopScoreCollector) MaxScore() float32 { return c.maxScore }

// TopDocs implements SearchCollector.
func (c *TopScoreCollector) TopDocs() ([]model.TopDocs, error) {
	if c.cached != nil {
		return c.cached, nil
	}
	results := make([]model.TopDocs, len(c.queues))
	for i, q := range c.queues {
		results[i] = model.TopDocs{
			TotalHits: model.TotalHits{Value: c.collectedPerQuery[i], Relation: c.relation},
			ScoreDocs: q.drainDescending(),
		}
	}
	c.cached = results
	return results, nil
}

// ensureQueues sizes the per-sub-query state on the first collected hit.
func (c *TopScoreCollector) ensureQueues(numSubQueries int) {
	if c.queues != nil {
		return
	}
	c.queues = make([]*hitQueue, numSubQueries)
	for i := range c.queues {
		c.queues[i] = newHitQueue(c.numHits)
	}
	c.minScoreThresholds = make([]float32, numSubQueries)
	for i := range c.minScoreThresholds {
		c.minScoreThresholds[i] = math.SmallestNonzeroFloat32
	}
	c.collectedPerQuery = make([]int64, numSubQueries)
}

type topScoreLeafCollector struct {
	parent    *TopScoreCollector
	docBase   int
	subScores *scorer.SubQueryScores
}

// SetScorer implements scorer.LeafCollector.
func (l *topScoreLeafCollector) SetScorer(s scorer.Scorable) error {
	sub, err := unwrapScores(s)
	if err != nil {
		return err
	}
	l.subScores = sub
	return nil
}

// Collect implements scorer.LeafCollector.
func (l *topScoreLeafCollector) Collect(doc int) error {
	c := l.parent
	scores := l.subScores.Scores()
	c.ensureQueues(len(scores))

	// Every collected doc is unique on the shard.
	c.totalHits++
	c.threshold.Increment()

	docWithBase := doc + l.docBase
	for i, score := range scores {
		// 0.0 means the sub-query did not match this doc.
		if score <= 0 && score < c.minScoreThresholds[i] {
			continue
		}
		if c.threshold.Reached() {
			c.relation = model.RelationGreaterThanOrEqualTo
		}
		c.collectedPerQuery[i]++
		if score > c.maxScore {
			c.maxScore = score
		}
		evicted, overflowed := c.queues[i].insertWithOverflow(model.ScoreDoc{Doc: docWithBase, Score: score, ShardIndex: -1})
		if overflowed {
			if evicted.Score > c.minScoreThresholds[i] {
				c.minScoreThresholds[i] = evicted.Score
			}
			l.subScores.RaiseMinScore(i, evicted.Score)
		}
	}
	return nil
}
