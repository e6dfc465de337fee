package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Andre601/WorldGuardWrapper/internal/flag"
	"github.com/Andre601/WorldGuardWrapper/internal/host"
	"github.com/Andre601/WorldGuardWrapper/internal/logging"
	"github.com/Andre601/WorldGuardWrapper/internal/region"
	"github.com/gin-gonic/gin"
)

func fail(c *gin.Context, status int, format string, args ...any) {
	c.JSON(status, GenericResponse{Success: false, Message: fmt.Sprintf(format, args...)})
}

func ok(c *gin.Context, status int, message string, data any) {
	c.JSON(status, GenericResponse{Success: true, Message: message, Data: data})
}

func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
		"uptime": time.Since(rs.startTime).Round(time.Second).String(),
	})
}

func (rs *RestServer) handleEngine(c *gin.Context) {
	api := rs.impl.APIVersion()
	ok(c, http.StatusOK, "engine", engineDTO{
		APIVersion:          api,
		EngineVersion:       rs.impl.EngineVersion(),
		Legacy:              api < 0,
		SupportsCustomFlags: api >= 0,
	})
}

// world находит мир из пути запроса; при ошибке ответ уже отправлен
func (rs *RestServer) world(c *gin.Context) (host.World, bool) {
	name := c.Param("world")
	w, found := rs.worlds.World(name)
	if !found {
		fail(c, http.StatusNotFound, "world %q not found", name)
		return host.World{}, false
	}
	return w, true
}

// loadedWorld дополнительно требует загруженные регионы мира
func (rs *RestServer) loadedWorld(c *gin.Context) (host.World, bool) {
	w, found := rs.world(c)
	if !found {
		return w, false
	}
	if !rs.impl.HasRegionManager(w) {
		fail(c, http.StatusNotFound, "regions are not loaded for world %q", w.Name)
		return w, false
	}
	return w, true
}

func (rs *RestServer) location(c *gin.Context, w host.World) (host.Location, bool) {
	var coords [3]float64
	for i, key := range []string{"x", "y", "z"} {
		v, err := strconv.ParseFloat(c.Query(key), 64)
		if err != nil {
			fail(c, http.StatusBadRequest, "query parameter %s: %v", key, err)
			return host.Location{}, false
		}
		coords[i] = v
	}
	return host.NewLocation(w, coords[0], coords[1], coords[2]), true
}

func (rs *RestServer) handleListRegions(c *gin.Context) {
	w, found := rs.loadedWorld(c)
	if !found {
		return
	}
	set := region.NewSet()
	for _, r := range rs.impl.GetRegions(w) {
		set.Add(r)
	}
	ok(c, http.StatusOK, fmt.Sprintf("%d regions", len(set)), newRegionDTOs(set))
}

func (rs *RestServer) handleGetRegion(c *gin.Context) {
	w, found := rs.loadedWorld(c)
	if !found {
		return
	}
	r, exists := rs.impl.GetRegion(w, c.Param("id"))
	if !exists {
		fail(c, http.StatusNotFound, "region %q not found", c.Param("id"))
		return
	}
	ok(c, http.StatusOK, "region", newRegionDTO(r))
}

func (rs *RestServer) handleRegionsAt(c *gin.Context) {
	w, found := rs.world(c)
	if !found {
		return
	}
	loc, valid := rs.location(c, w)
	if !valid {
		return
	}
	set := rs.impl.RegionsAt(loc)
	ok(c, http.StatusOK, fmt.Sprintf("%d regions", len(set)), newRegionDTOs(set))
}

// lookupFlag ищет флаг по имени среди всех типов значений
func (rs *RestServer) lookupFlag(name string) (flag.WrappedFlag, bool) {
	for _, t := range flag.ValueTypes {
		if f, found := rs.impl.GetFlag(name, t); found {
			return f, true
		}
	}
	return nil, false
}

func (rs *RestServer) handleQueryFlag(c *gin.Context) {
	w, found := rs.world(c)
	if !found {
		return
	}
	f, found := rs.lookupFlag(c.Param("flag"))
	if !found {
		fail(c, http.StatusNotFound, "flag %q not found", c.Param("flag"))
		return
	}
	loc, valid := rs.location(c, w)
	if !valid {
		return
	}

	var groups []string
	if g := c.Query("groups"); g != "" {
		groups = strings.Split(g, ",")
	}
	player, err := parsePlayer(c.Query("player"), groups)
	if err != nil {
		fail(c, http.StatusBadRequest, "player: %v", err)
		return
	}

	value, set := rs.impl.QueryFlag(player, loc, f)
	dto := flagValueDTO{Flag: f.Name(), Type: typeNames[f.ValueType()], Set: set}
	if set {
		dto.Value = encodeFlagValue(value)
	}
	ok(c, http.StatusOK, "flag", dto)
}

func (rs *RestServer) handleCreateRegion(c *gin.Context) {
	w, found := rs.loadedWorld(c)
	if !found {
		return
	}

	var req createRegionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request: %v", err)
		return
	}
	if _, exists := rs.impl.GetRegion(w, req.ID); exists {
		fail(c, http.StatusConflict, "region %q already exists", req.ID)
		return
	}

	var parent region.WrappedRegion
	if req.Parent != "" {
		p, exists := rs.impl.GetRegion(w, req.Parent)
		if !exists {
			fail(c, http.StatusBadRequest, "parent region %q not found", req.Parent)
			return
		}
		parent = p
	}

	type flagValue struct {
		flag  flag.WrappedFlag
		value any
	}
	values := make([]flagValue, 0, len(req.Flags))
	for name, raw := range req.Flags {
		f, exists := rs.lookupFlag(name)
		if !exists {
			fail(c, http.StatusBadRequest, "flag %q not found", name)
			return
		}
		v, err := decodeFlagValue(f, raw, rs.worlds)
		if err == nil {
			err = checkNativeValue(f, v)
		}
		if err != nil {
			fail(c, http.StatusBadRequest, "%v", err)
			return
		}
		values = append(values, flagValue{flag: f, value: v})
	}

	points := make([]host.Location, len(req.Points))
	for i, p := range req.Points {
		points[i] = host.NewLocation(w, p.X, p.Y, p.Z)
	}
	r, created := rs.impl.AddRegion(req.ID, points, req.MinY, req.MaxY)
	if !created {
		fail(c, http.StatusBadRequest, "region %q could not be created", req.ID)
		return
	}

	r.SetPriority(req.Priority)
	if parent != nil {
		if err := r.SetParent(parent); err != nil {
			rs.discardRegion(w, r.ID())
			c.Error(err)
			fail(c, http.StatusInternalServerError, "set parent: %v", err)
			return
		}
	}
	for _, fv := range values {
		if err := r.SetFlag(fv.flag, fv.value); err != nil {
			rs.discardRegion(w, r.ID())
			status := http.StatusInternalServerError
			if errors.Is(err, flag.ErrValueType) {
				status = http.StatusBadRequest
			}
			fail(c, status, "set flag %s: %v", fv.flag.Name(), err)
			return
		}
	}

	logging.Info("🧱 Регион %s создан в мире %s через API", r.ID(), w.Name)
	ok(c, http.StatusCreated, "region created", newRegionDTO(r))
}

// nativeChecker - ручка флага, умеющая проверить значение до записи в регион
type nativeChecker interface {
	ToNativeValue(v any) (any, error)
}

func checkNativeValue(f flag.WrappedFlag, v any) error {
	if nc, ok := f.(nativeChecker); ok {
		_, err := nc.ToNativeValue(v)
		return err
	}
	return nil
}

// discardRegion откатывает наполовину созданный регион
func (rs *RestServer) discardRegion(w host.World, id string) {
	if removed, _ := rs.impl.RemoveRegion(w, id); len(removed) > 0 {
		logging.Warn("↩️ Регион %s в мире %s удалён после неудачного создания", id, w.Name)
	}
}

func (rs *RestServer) handleDeleteRegion(c *gin.Context) {
	w, found := rs.world(c)
	if !found {
		return
	}
	removed, loaded := rs.impl.RemoveRegion(w, c.Param("id"))
	if !loaded {
		fail(c, http.StatusNotFound, "regions are not loaded for world %q", w.Name)
		return
	}
	if len(removed) == 0 {
		fail(c, http.StatusNotFound, "region %q not found", c.Param("id"))
		return
	}

	logging.Info("🗑️ Через API удалено регионов: %d (%s)", len(removed), strings.Join(removed.IDs(), ", "))
	ok(c, http.StatusOK, "region removed", removed.IDs())
}
