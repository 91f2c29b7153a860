// Command contourtrace casts a picking ray against a dual-contouring grid file
// and prints the hit together with a summary of the debug primitives.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/saiko-tech/contour-tracer/pkg/contourtracer"
	"github.com/saiko-tech/contour-tracer/pkg/contourtracer/debugdraw"
	"github.com/saiko-tech/contour-tracer/pkg/contourtracer/grid"
)

func main() {
	var (
		jobPath  = flag.String("job", "", "JSON job file")
		gridPath = flag.String("grid", "", "grid file, or its name inside -dir, -bundle and -vpk")
		dir      = flag.String("dir", "", "directory to look up the grid in")
		bundle   = flag.String("bundle", "", "zip bundle to look up the grid in")
		vpkBase  = flag.String("vpk", "", "VPK base name (pak01 for pak01_dir.vpk) to look up the grid in")
		cam      = flag.String("cam", "", "camera position x,y,z")
		hit      = flag.String("hit", "", "picked surface position x,y,z")
		surface  = flag.Bool("surface", false, "also extract the debug surface")
		verbose  = flag.Bool("v", false, "log cast diagnostics")
	)

	flag.Parse()

	log.SetFlags(0)
	log.SetPrefix("contourtrace: ")

	var (
		j   job
		err error
	)

	if *jobPath != "" {
		j, err = loadJob(*jobPath)
		if err != nil {
			log.Fatal(err)
		}
	}

	if *gridPath != "" {
		j.Grid = *gridPath
	}

	if *dir != "" {
		j.Dir = *dir
	}

	if *bundle != "" {
		j.Bundles = append(j.Bundles, *bundle)
	}

	if *vpkBase != "" {
		j.VPKs = append(j.VPKs, *vpkBase)
	}

	if *cam != "" {
		if j.Camera, err = parseVec3(*cam); err != nil {
			log.Fatal(errors.Wrap(err, "-cam"))
		}
	}

	if *hit != "" {
		if j.Hit, err = parseVec3(*hit); err != nil {
			log.Fatal(errors.Wrap(err, "-hit"))
		}
	}

	j.Surface = j.Surface || *surface

	var logger *log.Logger
	if *verbose {
		logger = log.New(os.Stderr, "contourtrace: cast: ", 0)
	}

	if err := run(os.Stdout, j, logger); err != nil {
		log.Fatal(err)
	}
}

func loadGrid(j job) (*grid.Dense, error) {
	if j.Grid == "" {
		return nil, errors.New("no grid given")
	}

	if !j.archived() {
		return grid.Load(j.Grid)
	}

	a, err := grid.OpenArchive(j.Dir, j.Bundles...)
	if err != nil {
		return nil, err
	}

	defer a.Close()

	for _, base := range j.VPKs {
		if err := a.AddVPK(base); err != nil {
			return nil, err
		}
	}

	return a.Load(j.Grid)
}

func run(w io.Writer, j job, logger *log.Logger) error {
	g, err := loadGrid(j)
	if err != nil {
		return err
	}

	cfg := j.Tuning.config()
	cfg.Logger = logger

	rec := debugdraw.NewRecorder()
	session := debugdraw.NewSession(rec)

	camPos, hitPos := j.Camera, j.Hit
	world := mgl32.Ident4()

	if j.World != nil {
		world = *j.World

		if world.Det() == 0 {
			return errors.New("world matrix is not invertible")
		}

		inv := world.Inv()
		camPos = mgl32.TransformCoordinate(camPos, inv)
		hitPos = mgl32.TransformCoordinate(hitPos, inv)

		session.SetTransform(world)
	}

	tracer := contourtracer.NewTracer(g, cfg)
	r := tracer.IntersectContour(camPos, hitPos, session)

	if r.Hit {
		fmt.Fprintf(w, "hit: point=%v world=%v normal=%v t=%g\n",
			r.Point, mgl32.TransformCoordinate(r.Point, world), r.Normal, r.T)
	} else {
		fmt.Fprintln(w, "miss")
	}

	if j.Surface {
		mesh, err := contourtracer.ExtractSurface(g, contourtracer.ExtractOptions{ApplyFlipMask: j.FlipMask})

		var missing contourtracer.MissingNeighborsError

		if errors.As(err, &missing) {
			log.Printf("surface is incomplete: %d neighbour voxels are not stored", len(missing.Neighbors()))
		} else if err != nil {
			return errors.Wrap(err, "failed to extract surface")
		}

		mesh.Draw(session, debugdraw.Red)
		fmt.Fprintf(w, "surface: %d triangles\n", mesh.Len())
	}

	hist := rec.Histogram()
	for _, k := range []debugdraw.Kind{debugdraw.KindSphere, debugdraw.KindLine, debugdraw.KindBox, debugdraw.KindTriangle} {
		fmt.Fprintf(w, "%s: %d\n", k, hist[k])
	}

	return nil
}
