package browser

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
)

// clickNode clicks the center of a node. The plain variant presses and
// releases immediately; the humanized one moves the pointer in first.
func clickNode(ctx context.Context, nodeID cdp.NodeID, humanize bool) error {
	x, y, err := nodeCenter(ctx, nodeID)
	if err != nil {
		return err
	}

	if humanize {
		// Small jitter so repeated clicks don't hit the exact same pixel.
		x += (rand.Float64() - 0.5) * 6
		y += (rand.Float64() - 0.5) * 6
		return humanClick(ctx, x, y)
	}
	return dispatchClick(ctx, x, y)
}

// nodeCenter computes the visual center of a node from its box model.
func nodeCenter(ctx context.Context, nodeID cdp.NodeID) (float64, float64, error) {
	var box *dom.BoxModel
	err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		box, err = dom.GetBoxModel().WithNodeID(nodeID).Do(ctx)
		return err
	}))
	if err != nil {
		return 0, 0, fmt.Errorf("box model: %w", err)
	}
	if len(box.Content) < 6 {
		return 0, 0, fmt.Errorf("invalid box model")
	}

	cx := (box.Content[0] + box.Content[2]) / 2
	cy := (box.Content[1] + box.Content[5]) / 2
	return cx, cy, nil
}

func dispatchClick(ctx context.Context, x, y float64) error {
	if err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return input.DispatchMouseEvent(input.MousePressed, x, y).
			WithButton(input.Left).
			WithClickCount(1).
			Do(ctx)
	})); err != nil {
		return err
	}
	return chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return input.DispatchMouseEvent(input.MouseReleased, x, y).
			WithButton(input.Left).
			WithClickCount(1).
			Do(ctx)
	}))
}

// humanClick approaches the target from a random offset, settles, then
// presses and releases with human-scale delays.
func humanClick(ctx context.Context, x, y float64) error {
	offX := (rand.Float64()-0.5)*200 + 50
	offY := (rand.Float64()-0.5)*200 + 50
	startX, startY := x+offX, y+offY

	if needsApproach(offX, offY) {
		if err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
			return input.DispatchMouseEvent(input.MouseMoved, startX, startY).Do(ctx)
		})); err != nil {
			return err
		}
		if err := moveMouse(ctx, startX, startY, x, y); err != nil {
			return err
		}
	}

	time.Sleep(time.Duration(50+rand.Intn(150)) * time.Millisecond)

	if err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return input.DispatchMouseEvent(input.MousePressed, x, y).
			WithButton(input.Left).
			WithClickCount(1).
			Do(ctx)
	})); err != nil {
		return err
	}

	time.Sleep(time.Duration(30+rand.Intn(90)) * time.Millisecond)

	return chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return input.DispatchMouseEvent(input.MouseReleased, x+(rand.Float64()-0.5)*2, y+(rand.Float64()-0.5)*2).
			WithButton(input.Left).
			WithClickCount(1).
			Do(ctx)
	}))
}

// moveMouse follows a cubic bezier from (fromX, fromY) to (toX, toY) with
// per-step jitter. Step count scales with distance, clamped to [5, 30].
func moveMouse(ctx context.Context, fromX, fromY, toX, toY float64) error {
	distance := math.Hypot(toX-fromX, toY-fromY)
	duration := 100 + (distance/2000)*200 + float64(rand.Intn(100))

	steps := moveSteps(duration)

	cp1X := fromX + (toX-fromX)*0.25 + (rand.Float64()-0.5)*50
	cp1Y := fromY + (toY-fromY)*0.25 + (rand.Float64()-0.5)*50
	cp2X := fromX + (toX-fromX)*0.75 + (rand.Float64()-0.5)*50
	cp2Y := fromY + (toY-fromY)*0.75 + (rand.Float64()-0.5)*50

	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := bezier(t, fromX, cp1X, cp2X, toX) + (rand.Float64()-0.5)*2
		y := bezier(t, fromY, cp1Y, cp2Y, toY) + (rand.Float64()-0.5)*2

		if err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
			return input.DispatchMouseEvent(input.MouseMoved, x, y).Do(ctx)
		})); err != nil {
			return err
		}

		time.Sleep(time.Duration(16+rand.Intn(8)) * time.Millisecond)
	}
	return nil
}

// approachDistance is the offset below which the pointer jumps straight
// to the target instead of animating in.
const approachDistance = 30

func needsApproach(offX, offY float64) bool {
	return math.Hypot(offX, offY) > approachDistance
}

func moveSteps(duration float64) int {
	steps := int(duration / 20)
	if steps < 5 {
		steps = 5
	}
	if steps > 30 {
		steps = 30
	}
	return steps
}

// bezier evaluates a cubic bezier at t for one axis.
func bezier(t, p0, p1, p2, p3 float64) float64 {
	u := 1 - t
	return u*u*u*p0 + 3*u*u*t*p1 + 3*u*t*t*p2 + t*t*t*p3
}
