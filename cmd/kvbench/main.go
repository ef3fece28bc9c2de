package main

import (
	"flag"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/dustin/go-humanize"
	"github.com/gobwas/avl"
	"github.com/google/btree"
	"github.com/sirupsen/logrus"

	"github.com/gobwas/kvindex"
)

// workload describes the keys applied to every index. It may be loaded from
// a TOML file given by -config; explicitly set flags override file values.
type workload struct {
	Keys     int      `toml:"keys"`
	Delete   float64  `toml:"delete"`
	Seed     int64    `toml:"seed"`
	Capacity int      `toml:"capacity"`
	Floor    int      `toml:"floor"`
	Hashers  []string `toml:"hashers"`
}

func main() {
	var (
		w       workload
		config  string // Optional TOML workload file.
		hashers string // Comma-separated hashers list.
		csv     bool
		display bool

		verbose bool
		silent  bool
	)
	flag.IntVar(&w.Keys,
		"n", 1e5,
		"number of keys to insert",
	)
	flag.Float64Var(&w.Delete,
		"del", 0.5,
		"fraction of inserted keys to delete afterwards",
	)
	flag.Int64Var(&w.Seed,
		"seed", 0,
		"random seed; current time is used if zero",
	)
	flag.IntVar(&w.Capacity,
		"capacity", kvindex.DefaultCapacity,
		"initial capacity of hash maps",
	)
	flag.IntVar(&w.Floor,
		"floor", kvindex.DefaultFloorCapacity,
		"capacity below which hash maps never shrink",
	)
	flag.StringVar(&hashers,
		"hashers", "int,poly,xxhash,cityhash,digest,fnv",
		"comma-separated list of hash map hashers to run",
	)
	flag.StringVar(&config,
		"config", "",
		"path to TOML workload file",
	)
	flag.BoolVar(&verbose,
		"v", false,
		"be verbose",
	)
	flag.BoolVar(&silent,
		"s", false,
		"be silent",
	)
	flag.BoolVar(&csv,
		"csv", false,
		"print csv to standard output",
	)
	flag.BoolVar(&display,
		"display", false,
		"draw the resulting ordered map (small workloads only)",
	)

	flag.Parse()

	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		DisableColors: true,
	})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	printf := func(f string, args ...interface{}) {
		if silent {
			return
		}
		fmt.Fprintf(os.Stderr, f, args...)
	}

	w.Hashers = splitList(hashers)
	if config != "" {
		if err := loadWorkload(config, &w); err != nil {
			log.WithError(err).Fatal("can not load workload")
		}
	}
	if w.Seed == 0 {
		w.Seed = time.Now().UnixNano()
	}
	if w.Keys <= 0 || w.Delete < 0 || w.Delete > 1 {
		log.Fatalf("invalid workload: %d keys, %.2f deleted", w.Keys, w.Delete)
	}
	log.WithFields(logrus.Fields{
		"keys":     w.Keys,
		"delete":   w.Delete,
		"seed":     w.Seed,
		"capacity": w.Capacity,
		"floor":    w.Floor,
	}).Debug("workload is ready")

	var (
		rnd     = rand.New(rand.NewSource(w.Seed))
		keys    = makeKeys(rnd, w.Keys)
		deletes = rnd.Perm(w.Keys)[:int(float64(w.Keys)*w.Delete)]
	)
	expect := expectedIndices(w.Keys, deletes)
	log.Debugf("%d keys are ready; %d will be deleted", len(keys), len(deletes))

	var (
		tree    = kvindex.NewOrderedMap[int64, int]()
		runners = []runner{
			treeRunner(tree, keys),
			avlRunner(keys),
			btreeRunner(keys),
		}
		opts = []kvindex.Option{
			kvindex.WithFloorCapacity(w.Floor),
		}
	)
	for _, name := range w.Hashers {
		r, err := hashRunner(name, keys, w.Capacity, opts)
		if err != nil {
			log.WithError(err).WithField("hasher", name).Fatal("can not create hash map")
		}
		runners = append(runners, r)
	}

	results := make([]result, 0, len(runners))
	for _, r := range runners {
		res, err := run(r, len(keys), deletes)
		if err != nil {
			log.WithError(err).WithField("index", r.name).Fatal("run failed")
		}
		if act := r.dump(); !equalInts(act, expect) {
			log.WithField("index", r.name).Fatalf(
				"unexpected contents: %d entries; want %d",
				len(act), len(expect),
			)
		}
		log.WithFields(logrus.Fields{
			"index":  r.name,
			"insert": res.insert,
			"delete": res.delete,
		}).Debug("run complete")
		results = append(results, res)
		printf(".")
	}
	printf("\n")

	if err := tree.Validate(); err != nil {
		log.WithError(err).Fatal("ordered map is broken")
	}
	if display {
		if n := tree.Len(); n > 64 {
			log.Warnf("ordered map holds %d entries; too many to draw", n)
		} else if err := tree.Display(os.Stdout); err != nil {
			log.WithError(err).Fatal("can not draw ordered map")
		}
	}

	tw := tabwriter.NewWriter(os.Stdout, 2, 2, 2, ' ', 0)
	if csv {
		fmt.Fprintf(tw, "index,\tinsert_ms,\tdelete_ms,\tlen,\tstat\n")
	} else {
		fmt.Fprintf(tw, "INDEX\tINSERT\tDELETE\tLEN\tSTAT\n")
	}
	for _, res := range results {
		if csv {
			fmt.Fprintf(tw,
				"%s,\t%.2f,\t%.2f,\t%d,\t%s\n",
				res.name,
				res.insert.Seconds()*1000,
				res.delete.Seconds()*1000,
				res.len, res.stat,
			)
			continue
		}
		fmt.Fprintf(tw,
			"%s\t%s\t%s\t%s\t%s\n",
			res.name,
			rate(len(keys), res.insert),
			rate(len(deletes), res.delete),
			humanize.Comma(int64(res.len)),
			res.stat,
		)
	}
	tw.Flush()

	printf("OK\n")
}

// runner applies the workload to a single index. Entries are identified by
// their position in the keys slice.
type runner struct {
	name   string
	insert func(i int) error
	delete func(i int) error
	dump   func() []int
	stat   func() string
}

type result struct {
	name   string
	insert time.Duration
	delete time.Duration
	len    int
	stat   string
}

func run(r runner, n int, deletes []int) (result, error) {
	res := result{
		name: r.name,
	}

	start := time.Now()
	for i := 0; i < n; i++ {
		if err := r.insert(i); err != nil {
			return res, fmt.Errorf("insert #%d: %w", i, err)
		}
	}
	res.insert = time.Since(start)

	start = time.Now()
	for _, i := range deletes {
		if err := r.delete(i); err != nil {
			return res, fmt.Errorf("delete #%d: %w", i, err)
		}
	}
	res.delete = time.Since(start)

	res.len = len(r.dump())
	res.stat = r.stat()

	return res, nil
}

func treeRunner(tree *kvindex.OrderedMap[int64, int], keys []int64) runner {
	return runner{
		name: "ordered",
		insert: func(i int) error {
			return tree.Insert(keys[i], i)
		},
		delete: func(i int) error {
			return tree.DeleteKey(keys[i])
		},
		dump: func() (ret []int) {
			tree.InOrder(func(_ int64, i int) bool {
				ret = append(ret, i)
				return true
			})
			sort.Ints(ret)
			return ret
		},
		stat: func() string {
			return fmt.Sprintf("depth=%d", tree.Depth())
		},
	}
}

func avlRunner(keys []int64) runner {
	var tree avl.Tree
	return runner{
		name: "avl",
		insert: func(i int) error {
			var existing avl.Item
			tree, existing = tree.Insert(entry{keys[i], i})
			if existing != nil {
				return kvindex.ErrDuplicateKey
			}
			return nil
		},
		delete: func(i int) error {
			var existed avl.Item
			tree, existed = tree.Delete(entry{key: keys[i]})
			if existed == nil {
				return kvindex.ErrNotFound
			}
			return nil
		},
		dump: func() (ret []int) {
			tree.InOrder(func(x avl.Item) bool {
				ret = append(ret, x.(entry).index)
				return true
			})
			sort.Ints(ret)
			return ret
		},
		stat: func() string {
			return ""
		},
	}
}

func btreeRunner(keys []int64) runner {
	tree := btree.New(32)
	return runner{
		name: "btree",
		insert: func(i int) error {
			if tree.ReplaceOrInsert(entry{keys[i], i}) != nil {
				return kvindex.ErrDuplicateKey
			}
			return nil
		},
		delete: func(i int) error {
			if tree.Delete(entry{key: keys[i]}) == nil {
				return kvindex.ErrNotFound
			}
			return nil
		},
		dump: func() (ret []int) {
			tree.Ascend(func(x btree.Item) bool {
				ret = append(ret, x.(entry).index)
				return true
			})
			sort.Ints(ret)
			return ret
		},
		stat: func() string {
			return ""
		},
	}
}

func hashRunner(name string, keys []int64, capacity int, opts []kvindex.Option) (runner, error) {
	if capacity <= 0 {
		capacity = kvindex.DefaultCapacity
	}
	if name == "int" {
		m, err := kvindex.NewHashMap[int64, int](capacity, kvindex.IntHasher[int64]{}, opts...)
		if err != nil {
			return runner{}, err
		}
		return mapRunner("hash/int", m, func(i int) int64 {
			return keys[i]
		}), nil
	}
	var h kvindex.Hasher[string]
	switch name {
	case "poly":
		h = kvindex.PolyHasher{}
	case "xxhash":
		h = kvindex.XXHasher{}
	case "cityhash":
		h = kvindex.CityHasher{}
	case "digest":
		h = &kvindex.DigestHasher{}
	case "fnv":
		h = &kvindex.DigestHasher{
			Hash: fnv.New64a,
		}
	default:
		return runner{}, fmt.Errorf("unexpected hasher: %q", name)
	}
	m, err := kvindex.NewHashMap[string, int](capacity, h, opts...)
	if err != nil {
		return runner{}, err
	}
	skeys := make([]string, len(keys))
	for i, k := range keys {
		skeys[i] = fmt.Sprintf("%016x", k)
	}
	return mapRunner("hash/"+name, m, func(i int) string {
		return skeys[i]
	}), nil
}

func mapRunner[K comparable](name string, m *kvindex.HashMap[K, int], key func(int) K) runner {
	return runner{
		name: name,
		insert: func(i int) error {
			return m.Insert(key(i), i)
		},
		delete: func(i int) error {
			return m.Delete(key(i))
		},
		dump: func() (ret []int) {
			m.Range(func(_ K, i int) bool {
				ret = append(ret, i)
				return true
			})
			sort.Ints(ret)
			return ret
		},
		stat: func() string {
			return fmt.Sprintf(
				"capacity=%s load=%.3f",
				humanize.Comma(int64(m.Capacity())), m.LoadFactor(),
			)
		},
	}
}

// entry is an item of the baseline trees.
type entry struct {
	key   int64
	index int
}

func (e entry) Compare(x avl.Item) int {
	k := x.(entry).key
	switch {
	case e.key < k:
		return -1
	case e.key > k:
		return 1
	}
	return 0
}

func (e entry) Less(than btree.Item) bool {
	return e.key < than.(entry).key
}

func loadWorkload(path string, w *workload) error {
	file := *w
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return err
	}
	// Explicitly set flags take precedence over the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "n":
			file.Keys = w.Keys
		case "del":
			file.Delete = w.Delete
		case "seed":
			file.Seed = w.Seed
		case "capacity":
			file.Capacity = w.Capacity
		case "floor":
			file.Floor = w.Floor
		case "hashers":
			file.Hashers = w.Hashers
		}
	})
	*w = file
	return nil
}

// makeKeys returns n unique non-negative keys.
func makeKeys(rnd *rand.Rand, n int) []int64 {
	keys := make([]int64, 0, n)
	seen := make(map[int64]bool, n)
	for len(keys) < n {
		k := rnd.Int63n(math.MaxInt64)
		if seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	return keys
}

func expectedIndices(n int, deletes []int) []int {
	deleted := make(map[int]bool, len(deletes))
	for _, i := range deletes {
		deleted[i] = true
	}
	ret := make([]int, 0, n-len(deletes))
	for i := 0; i < n; i++ {
		if !deleted[i] {
			ret = append(ret, i)
		}
	}
	return ret
}

func splitList(s string) (ret []string) {
	for _, x := range strings.Split(s, ",") {
		if x = strings.TrimSpace(x); x != "" {
			ret = append(ret, x)
		}
	}
	return ret
}

func rate(n int, d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return humanize.SI(float64(n)/d.Seconds(), "op/s")
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
