// Package main 提供 go-eventbus 演示命令
//
// 启动 Hub，在一个命名总线上挂两个订阅（一个串行、一个有界并发），
// 发布一批消息，等待投递完成后打印指标。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	eventbus "github.com/dep2p/go-eventbus"
	"github.com/dep2p/go-eventbus/internal/util/logger"
)

var log = logger.Logger("eventbus/cmd")

// ═══════════════════════════════════════════════════════════════════════════
// 命令行参数
// ═══════════════════════════════════════════════════════════════════════════
var (
	configFile  = flag.String("config", "", "配置文件路径（.json/.yaml/.yml）")
	preset      = flag.String("preset", "", "预设配置 (ordered/throughput/bounded)")
	busName     = flag.String("name", "demo", "命名总线的名称")
	count       = flag.Int("count", 1000, "发布的消息数")
	concurrency = flag.Int("concurrency", 4, "并发订阅的投递上限")
	timeout     = flag.Duration("timeout", 30*time.Second, "等待投递完成的超时")
	showVersion = flag.Bool("version", false, "显示版本信息")
	showHelp    = flag.Bool("help", false, "显示帮助信息")
)

// tick 演示消息
type tick struct {
	Seq  int
	Sent time.Time
}

// sequencer 串行订阅者，校验消息顺序
type sequencer struct {
	mu       sync.Mutex
	next     int
	outOfSeq int
	seen     atomic.Int64
}

func (s *sequencer) Handle(t tick) {
	s.mu.Lock()
	if t.Seq != s.next {
		s.outOfSeq++
	}
	s.next = t.Seq + 1
	s.mu.Unlock()
	s.seen.Add(1)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	if *showVersion {
		fmt.Println(eventbus.VersionInfo())
		return nil
	}
	if *showHelp {
		printHelp()
		return nil
	}
	if *count < 0 {
		return fmt.Errorf("-count 必须 >= 0")
	}

	opts := buildOptions()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("📦 %s\n", eventbus.VersionInfo())
	hub, err := eventbus.Start(ctx, opts...)
	if err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}
	defer func() { _ = hub.Close() }()

	bus, err := eventbus.GetNamed[tick](hub, *busName)
	if err != nil {
		return err
	}

	seq := &sequencer{}
	seqID := eventbus.Subscribe[tick](bus, seq, eventbus.Serialize(true))
	defer bus.Unsubscribe(seqID)

	var concurrent atomic.Int64
	var maxLatency atomic.Int64
	conID := eventbus.SubscribeFunc(bus, func(t tick) {
		lat := int64(time.Since(t.Sent))
		for {
			cur := maxLatency.Load()
			if lat <= cur || maxLatency.CompareAndSwap(cur, lat) {
				break
			}
		}
		concurrent.Add(1)
	}, eventbus.MaxConcurrency(*concurrency))
	defer bus.Unsubscribe(conID)

	log.Info("开始发布", "bus", *busName, "count", *count)
	start := time.Now()
	for i := 0; i < *count; i++ {
		bus.Publish(tick{Seq: i, Sent: time.Now()})
	}

	want := int64(*count)
	if err := waitFor(ctx, *timeout, func() bool {
		return seq.seen.Load() == want && concurrent.Load() == want
	}); err != nil {
		return err
	}
	elapsed := time.Since(start)

	seq.mu.Lock()
	outOfSeq := seq.outOfSeq
	seq.mu.Unlock()

	fmt.Println()
	fmt.Printf("总线:       %s\n", *busName)
	fmt.Printf("消息数:     %d\n", *count)
	fmt.Printf("耗时:       %s\n", elapsed)
	fmt.Printf("串行乱序:   %d\n", outOfSeq)
	fmt.Printf("最大延迟:   %s\n", time.Duration(maxLatency.Load()))

	return printMetrics(hub)
}

// buildOptions 根据命令行参数构建选项
func buildOptions() []eventbus.Option {
	var opts []eventbus.Option
	if *configFile != "" {
		opts = append(opts, eventbus.WithConfigFile(*configFile))
	}
	if *preset != "" {
		opts = append(opts, eventbus.WithPreset(*preset))
	}
	return opts
}

// waitFor 轮询直到 cond 成立、超时或收到退出信号
func waitFor(ctx context.Context, d time.Duration, cond func() bool) error {
	deadline := time.NewTimer(d)
	defer deadline.Stop()
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for !cond() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return errors.New("等待投递完成超时")
		case <-ticker.C:
		}
	}
	return nil
}

// printMetrics 打印 Hub 收集的事件总线指标
func printMetrics(hub *eventbus.Hub) error {
	g := hub.Gatherer()
	if g == nil {
		return nil
	}
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("读取指标失败: %w", err)
	}
	if len(families) == 0 {
		return nil
	}

	fmt.Println()
	fmt.Println("指标:")
	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}

			switch {
			case m.GetCounter() != nil:
				lines = append(lines, fmt.Sprintf("  %-70s %v", name, m.GetCounter().GetValue()))
			case m.GetGauge() != nil:
				lines = append(lines, fmt.Sprintf("  %-70s %v", name, m.GetGauge().GetValue()))
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				lines = append(lines, fmt.Sprintf("  %-70s count=%d sum=%.6fs", name, h.GetSampleCount(), h.GetSampleSum()))
			}
		}
	}
	sort.Strings(lines)
	for _, l := range lines {
		fmt.Println(l)
	}
	return nil
}

// printHelp 打印帮助信息
func printHelp() {
	fmt.Println("eventbus - 进程内类型化发布/订阅演示")
	fmt.Println()
	fmt.Println("用法:")
	fmt.Println("  eventbus [选项]")
	fmt.Println()
	fmt.Println("选项:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("环境变量:")
	fmt.Println("  EVENTBUS_LOG_LEVEL       # 日志级别，例如 core/eventbus=debug,info")
	fmt.Println("  EVENTBUS_LOG_FORMAT      # text 或 json")
}
