package main

import (
	"bufio"
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/brian14708/binrange"
)

const allGroup = "_all"

type document struct {
	group  string
	values [][]byte
}

func main() {
	var (
		cfg        binrange.Config
		configFile string
		inputFile  string
		partitions int
		logLevel   string
	)
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	cfg.RegisterFlagsAndApplyDefaults("", fs)
	fs.StringVar(&configFile, "config.file", "", "YAML file with the range aggregation config.")
	fs.StringVar(&inputFile, "input", "-", "Documents, one per line: [group<TAB>]value,value,... ('-' for stdin).")
	fs.IntVar(&partitions, "partitions", 4, "Number of partitions to split documents over.")
	fs.StringVar(&logLevel, "log.level", "info", "Log level (debug, info, warn, error).")
	_ = fs.Parse(os.Args[1:])

	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = level.NewFilter(logger, level.Allow(level.ParseDefault(logLevel, level.InfoValue())))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	if err := run(&cfg, configFile, inputFile, partitions, os.Stdout, logger); err != nil {
		level.Error(logger).Log("msg", "aggregation failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg *binrange.Config, configFile, inputFile string, partitions int, out io.Writer, logger log.Logger) error {
	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return errors.Wrap(err, "read config")
		}
		if err := binrange.ParseConfig(data, cfg); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if partitions <= 0 {
		return errors.New("partitions must be positive")
	}
	ranges, err := cfg.BuildRanges()
	if err != nil {
		return err
	}

	docs, err := readDocuments(inputFile, cfg.Type)
	if err != nil {
		return err
	}
	level.Info(logger).Log("msg", "loaded documents", "docs", len(docs), "ranges", ranges.Len(), "partitions", partitions)

	// owning ordinals are assigned to groups in first-seen order
	groups := map[string]int64{}
	var names []string
	builders := make([]*binrange.SegmentBuilder, partitions)
	owners := make([][]int64, partitions)
	for i := range builders {
		builders[i] = binrange.NewSegmentBuilder().DeclareField(cfg.Field, cfg.Type)
	}
	for i, d := range docs {
		ord, ok := groups[d.group]
		if !ok {
			ord = int64(len(names))
			groups[d.group] = ord
			names = append(names, d.group)
		}
		p := i % partitions
		if _, err := builders[p].AddDocument(map[string][][]byte{cfg.Field: d.values}); err != nil {
			return err
		}
		owners[p] = append(owners[p], ord)
	}

	parts := make([]binrange.Partition, partitions)
	for i, b := range builders {
		owner := owners[i]
		parts[i] = binrange.Partition{
			Segment: b.Build(),
			Owning:  func(doc uint32) int64 { return owner[doc] },
		}
	}
	owningOrds := make([]int64, len(names))
	for i := range owningOrds {
		owningOrds[i] = int64(i)
	}

	reg := prometheus.NewRegistry()
	metrics := binrange.NewMetrics(reg)
	rb := binrange.NewRegistryBuilder()
	binrange.RegisterAggregators(rb)
	rb.Register(binrange.ValuesSourceKeyword, binrange.NewRangeAggregator, binrange.RawFormat)
	factory, err := binrange.NewFactory(cfg.Name, cfg.Field, cfg.Type, ranges, rb.Build(), binrange.WithKeyed(cfg.Keyed))
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	results, err := binrange.Execute(ctx, factory, parts, owningOrds,
		binrange.WithWorkers(cfg.Workers),
		binrange.WithLogger(logger),
		binrange.WithMetrics(metrics),
	)
	if err != nil {
		return err
	}

	stream := jsoniter.ConfigCompatibleWithStandardLibrary.BorrowStream(out)
	defer jsoniter.ConfigCompatibleWithStandardLibrary.ReturnStream(stream)
	stream.WriteObjectStart()
	for i, name := range names {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteObjectField(name)
		stream.WriteVal(results[i])
	}
	stream.WriteObjectEnd()
	stream.WriteRaw("\n")
	if err := stream.Flush(); err != nil {
		return errors.Wrap(err, "write results")
	}
	level.Info(logger).Log("msg", "done", "groups", len(names))
	logMetrics(reg, logger)
	return nil
}

func logMetrics(g prometheus.Gatherer, logger log.Logger) {
	families, err := g.Gather()
	if err != nil {
		level.Warn(logger).Log("msg", "gather metrics", "err", err)
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			kv := []interface{}{"msg", "metric", "name", mf.GetName(), "value", m.GetCounter().GetValue()}
			for _, lp := range m.GetLabel() {
				kv = append(kv, lp.GetName(), lp.GetValue())
			}
			level.Debug(logger).Log(kv...)
		}
	}
}

func readDocuments(path string, typ binrange.ValuesSourceType) ([]document, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(err, "open input")
		}
		defer f.Close()
		r = f
	}

	var docs []document
	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		d := document{group: allGroup}
		if group, rest, ok := strings.Cut(text, "\t"); ok {
			d.group, text = group, rest
		}
		for _, field := range strings.Split(text, ",") {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			v, err := binrange.ParseValue(typ, field)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", line)
			}
			d.values = append(d.values, v)
		}
		docs = append(docs, d)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read input")
	}
	return docs, nil
}
