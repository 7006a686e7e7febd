// Package progress drives the simulated research progress dialog. Nothing in
// here reflects real server progress: it is a presentation timer that runs
// while the research request is in flight.
package progress

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Stage is one step of the dialog.
type Stage struct {
	Title       string
	Description string
	Steps       []string
}

var stages = []Stage{
	{
		Title:       "Initializing Research",
		Description: "Setting up the research environment...",
		Steps: []string{
			"Loading AI models...",
			"Preparing content analysis tools...",
			"Initializing SEO optimization engine...",
		},
	},
	{
		Title:       "Topic Analysis",
		Description: "Analyzing the topic and gathering insights...",
		Steps: []string{
			"Researching related topics...",
			"Identifying key themes and concepts...",
			"Analyzing competitor content...",
			"Gathering relevant statistics and data...",
		},
	},
	{
		Title:       "Content Generation",
		Description: "Creating the initial content draft...",
		Steps: []string{
			"Generating content structure...",
			"Writing main sections...",
			"Adding supporting details...",
			"Incorporating keywords naturally...",
			"Optimizing for readability...",
		},
	},
	{
		Title:       "Content Enhancement",
		Description: "Improving and expanding the content...",
		Steps: []string{
			"Expanding key sections...",
			"Adding relevant examples...",
			"Incorporating industry insights...",
			"Enhancing readability...",
			"Optimizing for SEO...",
		},
	},
	{
		Title:       "SEO Optimization",
		Description: "Optimizing content for search engines...",
		Steps: []string{
			"Analyzing keyword density...",
			"Optimizing meta descriptions...",
			"Structuring headings...",
			"Adding internal linking suggestions...",
			"Checking content length...",
		},
	},
	{
		Title:       "Quality Review",
		Description: "Performing final quality checks...",
		Steps: []string{
			"Checking content accuracy...",
			"Verifying SEO requirements...",
			"Ensuring proper formatting...",
			"Reviewing readability scores...",
			"Finalizing content structure...",
		},
	},
}

const (
	// EstimatedTotal is the duration announced to the user.
	EstimatedTotal = 180 * time.Second
	// FastForwardStep is the delay between stages once the request finished.
	FastForwardStep = 300 * time.Millisecond
	// CloseDelay is how long the dialog stays open after the request finished.
	CloseDelay = 3 * time.Second
)

// Stages returns a copy of the stage table.
func Stages() []Stage {
	out := make([]Stage, len(stages))
	copy(out, stages)
	return out
}

// Snapshot is one frame of the dialog.
type Snapshot struct {
	Stage       int           `json:"stage"`
	StageTitle  string        `json:"stageTitle"`
	Description string        `json:"description"`
	Step        int           `json:"step"`
	StepTitle   string        `json:"stepTitle"`
	Percent     float64       `json:"percent"`
	Remaining   time.Duration `json:"-"`
	RemainingS  int           `json:"remainingSeconds"`
	Closing     bool          `json:"closing"`
	// Simulated is always true so no consumer mistakes this for real progress.
	Simulated bool `json:"simulated"`
}

// Simulator advances on a virtual clock, so it can be driven by a ticker in
// production and stepped directly in tests.
type Simulator struct {
	stage   int
	step    int
	percent float64
	elapsed time.Duration

	stageEvery time.Duration
	stepEvery  time.Duration
	tickEvery  time.Duration

	nextStage time.Duration
	nextStep  time.Duration
	nextTick  time.Duration
}

// NewSimulator picks the intervals from seed: a stage every 20-30s, a
// sub-step every 2-5s and a progress tick every 2-8s.
func NewSimulator(seed int64) *Simulator {
	rng := rand.New(rand.NewSource(seed))
	s := &Simulator{
		stageEvery: randomInterval(rng, 20, 30),
		stepEvery:  randomInterval(rng, 2, 5),
		tickEvery:  randomInterval(rng, 2, 8),
	}
	s.nextStage = s.stageEvery
	s.nextStep = s.stepEvery
	s.nextTick = s.tickEvery
	return s
}

func randomInterval(rng *rand.Rand, minSeconds, maxSeconds int) time.Duration {
	ms := minSeconds*1000 + rng.Intn((maxSeconds-minSeconds)*1000+1)
	return time.Duration(ms) * time.Millisecond
}

// Intervals exposes the chosen stage, sub-step and tick intervals.
func (s *Simulator) Intervals() (stage, step, tick time.Duration) {
	return s.stageEvery, s.stepEvery, s.tickEvery
}

// Advance moves the virtual clock forward by d and returns the new frame.
func (s *Simulator) Advance(d time.Duration) Snapshot {
	s.elapsed += d
	for s.nextTick <= s.elapsed {
		s.percent = math.Min(100, s.percent+100/float64(len(stages)*10))
		s.nextTick += s.tickEvery
	}
	for s.nextStage <= s.elapsed {
		if s.stage < len(stages)-1 {
			s.stage++
			s.step = 0
		}
		s.nextStage += s.stageEvery
	}
	for s.nextStep <= s.elapsed {
		s.step++
		if s.step >= len(stages[s.stage].Steps) {
			s.step = 0
		}
		s.nextStep += s.stepEvery
	}
	return s.Snapshot()
}

// Snapshot returns the current frame without moving the clock.
func (s *Simulator) Snapshot() Snapshot {
	stage := stages[s.stage]
	remaining := EstimatedTotal - s.elapsed
	if remaining < 0 {
		remaining = 0
	}
	step := s.step
	if step >= len(stage.Steps) {
		step = 0
	}
	return Snapshot{
		Stage:       s.stage,
		StageTitle:  stage.Title,
		Description: stage.Description,
		Step:        step,
		StepTitle:   stage.Steps[step],
		Percent:     math.Round(s.percent*100) / 100,
		Remaining:   remaining,
		RemainingS:  int(math.Ceil(remaining.Seconds())),
		Simulated:   true,
	}
}

// Finish returns the fast-forward frames shown once the request completed:
// one per remaining stage, the last one flagged Closing.
func (s *Simulator) Finish() []Snapshot {
	var frames []Snapshot
	for s.stage < len(stages)-1 {
		s.stage++
		s.step = 0
		frames = append(frames, s.Snapshot())
	}
	s.percent = 100
	last := s.Snapshot()
	last.Closing = true
	return append(frames, last)
}

// Run drives sim with a ticker until ctx is done or done is closed, calling
// emit for every frame. After done it plays the fast-forward frames spaced
// by FastForwardStep. emit returning false stops the run.
func Run(ctx context.Context, sim *Simulator, tick time.Duration, done <-chan struct{}, emit func(Snapshot) bool) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	if !emit(sim.Snapshot()) {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			for _, frame := range sim.Finish() {
				if !emit(frame) {
					return
				}
				select {
				case <-ctx.Done():
					return
				case <-time.After(FastForwardStep):
				}
			}
			return
		case <-ticker.C:
			if !emit(sim.Advance(tick)) {
				return
			}
		}
	}
}
