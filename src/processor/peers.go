package processor

import (
	"context"
	"math"
	"sort"
)

// Peer 一个可比航司及其相对容量差距
type Peer struct {
	Airline  string `json:"airline"`
	Distance Rate   `json:"distance"`
	Rank     int    `json:"rank"`
}

// PeerFinder 查找容量最接近的航司
type PeerFinder interface {
	Peers(ctx context.Context, airline string) ([]Peer, error)
}

// Distance 相对容量差距 |a - b| / b，b为0时无定义
func Distance(capacity, other int64) Rate {
	if other == 0 {
		return Undefined()
	}
	return NewRate(math.Abs(float64(capacity-other)) / float64(other))
}

// FindPeers 将指定航司与其他所有航司逐一比较，按差距升序取前n个
// 差距相同时保持输入顺序；差距无定义的排在最后
func FindPeers(records []AirlineRecord, airline string, n int) ([]Peer, error) {
	idx := -1
	for i, r := range records {
		if r.Airline == airline {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, &NotFoundError{Airline: airline, Op: "peers"}
	}

	self, _ := TotalCapacity(records[idx].AvailSeatKmPerWeek)
	candidates := make([]Peer, 0, len(records)-1)
	for _, r := range records {
		if r.Airline == airline {
			continue
		}
		other, _ := TotalCapacity(r.AvailSeatKmPerWeek)
		candidates = append(candidates, Peer{
			Airline:  r.Airline,
			Distance: Distance(self, other),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		di, oki := candidates[i].Distance.Value()
		dj, okj := candidates[j].Distance.Value()
		if oki != okj {
			return oki
		}
		return oki && di < dj
	})

	if len(candidates) > n {
		candidates = candidates[:n]
	}
	if len(candidates) == 0 {
		return nil, &NotFoundError{Airline: airline, Op: "peers"}
	}
	for i := range candidates {
		candidates[i].Rank = i + 1
	}
	return candidates, nil
}

// MemoryPeers 在内存中排序取前三，与窗口查询语义一致
type MemoryPeers struct {
	Records []AirlineRecord
}

func (m MemoryPeers) Peers(_ context.Context, airline string) ([]Peer, error) {
	return FindPeers(m.Records, airline, PeerCount)
}

// PeerNames 提取航司名
func PeerNames(peers []Peer) []string {
	names := make([]string, len(peers))
	for i, p := range peers {
		names[i] = p.Airline
	}
	return names
}
