package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
	"k8s.io/klog/v2"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"negotiator/pkg/agent"
	"negotiator/pkg/bargaining"
	"negotiator/pkg/domain"
	"negotiator/pkg/preference"
	"negotiator/pkg/ranking"
)

func main() {
	var (
		domainPath       string
		selfProfile      string
		opponentProfile  string
		rankingPath      string
		rankingConfigMap string
		rounds           int
		sessionDeadline  time.Duration
		strategyProfiles string
		metricsAddr      string
		kubeconfig       string
		useConfigMap     bool
	)
	klog.InitFlags(nil)
	flag.StringVar(&domainPath, "domain", "", "Path to the domain YAML file (required)")
	flag.StringVar(&selfProfile, "self", "self", "Profile of the first agent")
	flag.StringVar(&opponentProfile, "opponent", "opponent", "Profile of the second agent")
	flag.StringVar(&rankingPath, "ranking", "", "Bid ranking file; the first agent then negotiates under preference uncertainty")
	flag.StringVar(&rankingConfigMap, "ranking-configmap", "", "Bid ranking ConfigMap as namespace/name, instead of -ranking")
	flag.IntVar(&rounds, "rounds", 180, "Session length in rounds")
	flag.DurationVar(&sessionDeadline, "deadline", 0, "Session length in wall-clock time; overrides -rounds when set")
	flag.StringVar(&strategyProfiles, "strategy-profiles", "", "Move distributions per strategy, used to recognize each party's strategy")
	flag.StringVar(&metricsAddr, "metrics-addr", "", "Address to serve Prometheus metrics on (empty = disabled)")
	if home := homedir.HomeDir(); home != "" {
		flag.StringVar(&kubeconfig, "kubeconfig", filepath.Join(home, ".kube", "config"), "Path to the kubeconfig file")
	} else {
		flag.StringVar(&kubeconfig, "kubeconfig", "", "Path to the kubeconfig file")
	}
	flag.BoolVar(&useConfigMap, "use-configmap", false, "Load negotiation parameters from the negotiator ConfigMap")
	flag.Parse()

	if domainPath == "" {
		klog.Fatal("-domain is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	file, err := domain.LoadFile(domainPath)
	if err != nil {
		klog.Fatalf("Failed to load domain: %v", err)
	}
	d, err := file.Build()
	if err != nil {
		klog.Fatalf("Invalid domain: %v", err)
	}

	var restConfig *rest.Config
	if useConfigMap || rankingConfigMap != "" {
		restConfig, err = buildRestConfig(kubeconfig)
		if err != nil {
			klog.Fatalf("Failed to get cluster config: %v", err)
		}
	}

	var k8sClient kubernetes.Interface
	if useConfigMap {
		k8sClient, err = kubernetes.NewForConfig(restConfig)
		if err != nil {
			klog.Fatalf("Failed to create Kubernetes client: %v", err)
		}
	}
	config, err := agent.LoadConfig(ctx, k8sClient)
	if err != nil {
		klog.Fatalf("Failed to load configuration: %v", err)
	}

	var r *ranking.Ranking
	switch {
	case rankingConfigMap != "":
		r, err = loadRankingConfigMap(ctx, restConfig, rankingConfigMap, d)
	case rankingPath != "":
		r, err = ranking.LoadFile(d, rankingPath)
	}
	if err != nil {
		klog.Fatalf("Failed to load ranking: %v", err)
	}
	if r != nil {
		best, _ := r.Best()
		worst, _ := r.Worst()
		klog.InfoS("Loaded bid ranking", "bids", r.Len(), "best", d.Format(best), "worst", d.Format(worst))
	}

	var profiles bargaining.StrategyProfiles
	if strategyProfiles != "" {
		profiles, err = bargaining.LoadStrategyProfiles(strategyProfiles)
		if err != nil {
			klog.Fatalf("Failed to load strategy profiles: %v", err)
		}
	}

	if metricsAddr != "" {
		startMetricsServer(metricsAddr)
	}

	var clock deadline = agent.NewRoundClock(rounds)
	if sessionDeadline > 0 {
		clock = agent.NewDeadlineClock(nil, sessionDeadline)
	}
	first, err := newAgent(file, d, selfProfile, r, clock, config)
	if err != nil {
		klog.Fatalf("Failed to create agent %s: %v", selfProfile, err)
	}
	second, err := newAgent(file, d, opponentProfile, nil, clock, config)
	if err != nil {
		klog.Fatalf("Failed to create agent %s: %v", opponentProfile, err)
	}

	res, err := negotiate(first, second, clock)
	if err != nil {
		klog.Fatalf("Negotiation failed: %v", err)
	}
	if res.Agreed {
		klog.InfoS("Agreement reached",
			"rounds", res.Rounds,
			"acceptor", res.Acceptor,
			"bid", d.Format(res.Bid),
			selfProfile, res.Utilities[selfProfile],
			opponentProfile, res.Utilities[opponentProfile])
		fmt.Printf("agreement after %d rounds: %s\n", res.Rounds, d.Format(res.Bid))
	} else {
		klog.InfoS("No agreement before the deadline", "rounds", res.Rounds)
		fmt.Println("no agreement")
	}

	a, err := analyze(file, d, selfProfile, opponentProfile, res, profiles)
	if err != nil {
		klog.ErrorS(err, "Failed to analyze session")
	} else {
		if a.Report != nil {
			klog.InfoS("Agreement analysis",
				"pareto", a.Report.Pareto,
				"paretoDistance", a.Report.ParetoDistance,
				"nashDistance", a.Report.NashDistance,
				"kalaiDistance", a.Report.KalaiDistance,
				"welfare", a.Report.Welfare,
				"maxWelfare", a.Report.MaxWelfare)
		}
		for _, name := range []string{selfProfile, opponentProfile} {
			kv := []interface{}{"agent", name, "moves", a.Moves[name].Map()}
			if s, ok := a.Strategies[name]; ok {
				kv = append(kv, "strategy", s.String())
			}
			klog.InfoS("Move analysis", kv...)
		}
	}

	if metricsAddr != "" {
		// Keep serving the final metrics until interrupted.
		sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		<-sigCtx.Done()
	}
}

// newAgent creates the agent for profile. With a ranking the agent only
// knows its preferences through it and the profile is not read.
func newAgent(file *domain.File, d *domain.Domain, profile string, r *ranking.Ranking, clock agent.Clock, config *agent.NegotiationConfig) (*agent.Agent, error) {
	var utility preference.Evaluator
	if r == nil {
		p, ok := file.Profile(profile)
		if !ok {
			return nil, fmt.Errorf("domain %q has no profile %q", d.Name, profile)
		}
		m, err := preference.FromProfile(d, p)
		if err != nil {
			return nil, fmt.Errorf("profile %q: %w", profile, err)
		}
		utility = m
	}
	session, err := agent.NewSession(d, clock, utility, r)
	if err != nil {
		return nil, err
	}
	return agent.NewAgent(profile, session, config)
}

// buildRestConfig uses the kubeconfig when it exists and the in-cluster
// config otherwise.
func buildRestConfig(kubeconfig string) (*rest.Config, error) {
	if kubeconfig != "" {
		if _, err := os.Stat(kubeconfig); err == nil {
			return clientcmd.BuildConfigFromFlags("", kubeconfig)
		}
	}
	return rest.InClusterConfig()
}

func loadRankingConfigMap(ctx context.Context, restConfig *rest.Config, ref string, d *domain.Domain) (*ranking.Ranking, error) {
	namespace, name, ok := strings.Cut(ref, "/")
	if !ok || namespace == "" || name == "" {
		return nil, fmt.Errorf("ranking ConfigMap must be namespace/name, got %q", ref)
	}

	scheme := runtime.NewScheme()
	_ = corev1.AddToScheme(scheme)
	c, err := client.New(restConfig, client.Options{Scheme: scheme})
	if err != nil {
		return nil, fmt.Errorf("create controller-runtime client: %w", err)
	}
	return ranking.LoadFromConfigMap(ctx, c, types.NamespacedName{Namespace: namespace, Name: name}, d)
}
