package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var ServerURL = "http://localhost:8080"
var CurrentPlayer string
var CurrentPlanet string

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
)

var client = &http.Client{Timeout: 10 * time.Second}

// --- Models ---
type Planet struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Robot struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	X    int    `json:"current_x"`
	Y    int    `json:"current_y"`
}

type Location struct {
	X             int    `json:"x_coord"`
	Y             int    `json:"y_coord"`
	HasMine       bool   `json:"has_resource_mine"`
	ResourceID    string `json:"resource_id"`
	ResourceName  string `json:"resource_name"`
	HasAliens     bool   `json:"has_aliens"`
	AlienQuantity int    `json:"alien_quantity"`
}

type StatusResponse struct {
	World   string `json:"world"`
	Uptime  string `json:"uptime"`
	Sweeper bool   `json:"sweeper"`
	Control bool   `json:"control"`
}

func main() {
	if url := os.Getenv("PLANETFALL_SERVER"); url != "" {
		ServerURL = url
	}

	reader := bufio.NewReader(os.Stdin)
	fmt.Println(titleStyle.Render("Planetfall Command Console"))
	fmt.Printf("Target Server: %s\n", ServerURL)

	for {
		fmt.Print("Player ID: ")
		id, _ := reader.ReadString('\n')
		id = strings.TrimSpace(id)
		if id == "quit" || id == "exit" {
			return
		}
		if id != "" {
			CurrentPlayer = id
			break
		}
	}

	fmt.Println("Commands: init, land, status, planets, robots, map, explore, build, actions, complete, update, groups, help, quit")
	for {
		fmt.Print(promptStyle.Render(fmt.Sprintf("[%s]> ", CurrentPlayer)))
		text, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		parts := strings.Fields(strings.TrimSpace(text))
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "init":
			show(call("POST", "/api/game/init", nil))
			pickPlanet()
		case "land":
			show(call("POST", "/api/game/land", nil))
		case "status":
			doStatus()
		case "planets":
			pickPlanet()
		case "use":
			if len(parts) < 2 {
				fmt.Println("Usage: use <planet_id>")
				continue
			}
			CurrentPlanet = parts[1]
		case "robots":
			doRobots()
		case "map":
			doMap()
		case "explore":
			if len(parts) < 4 {
				fmt.Println("Usage: explore <x> <y> <robot_id>...")
				continue
			}
			x, _ := strconv.Atoi(parts[1])
			y, _ := strconv.Atoi(parts[2])
			show(call("POST", "/api/game/explore/start", map[string]interface{}{
				"robotIds": parts[3:], "targetX": x, "targetY": y, "planetId": CurrentPlanet,
			}))
		case "build":
			if len(parts) < 2 {
				fmt.Println("Usage: build robot | build refinery <resource_id> <x> <y>")
				continue
			}
			doBuild(parts[1:])
		case "actions":
			show(call("GET", "/api/game/actions", nil))
		case "complete":
			if len(parts) < 2 {
				fmt.Println("Usage: complete <action_id>")
				continue
			}
			show(call("POST", "/api/game/action/complete", map[string]string{"actionId": parts[1]}))
		case "update":
			show(call("POST", "/api/game/explore/update", nil))
		case "groups":
			show(call("GET", "/api/game/explore/groups?planetId="+CurrentPlanet, nil))
		case "help":
			fmt.Println("Available Commands:")
			fmt.Println("  init                            - Create your home planet")
			fmt.Println("  land                            - Land on the shared planet")
			fmt.Println("  planets / use <id>              - List planets / switch planet")
			fmt.Println("  robots                          - Idle robots on the current planet")
			fmt.Println("  map                             - Discovered cells")
			fmt.Println("  explore <x> <y> <robot>...      - Send an expedition")
			fmt.Println("  build robot                     - Queue a robot")
			fmt.Println("  build refinery <res> <x> <y>    - Queue a refinery on a mine")
			fmt.Println("  actions / complete <id>         - Pending actions / finish one")
			fmt.Println("  update / groups                 - Advance and list expeditions")
			fmt.Println("  quit                            - Disconnect")
		case "quit", "exit":
			fmt.Println("Disconnecting...")
			return
		default:
			fmt.Println("Unknown command. Type 'help' for options.")
		}
	}
}

func call(method, path string, payload interface{}) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		data, _ := json.Marshal(payload)
		body = bytes.NewBuffer(data)
	}
	req, err := http.NewRequest(method, ServerURL+path, body)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("X-Player-ID", CurrentPlayer)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	return resp.StatusCode, data, err
}

func show(code int, body []byte, err error) {
	if err != nil {
		fmt.Println(errStyle.Render("Connection Error: " + err.Error()))
		return
	}
	if code != http.StatusOK {
		fmt.Println(errStyle.Render(fmt.Sprintf("%d %s", code, strings.TrimSpace(string(body)))))
		return
	}
	fmt.Println(okStyle.Render(strings.TrimSpace(string(body))))
}

func pickPlanet() {
	code, body, err := call("GET", "/api/game/planets", nil)
	if err != nil || code != http.StatusOK {
		show(code, body, err)
		return
	}
	var r struct {
		Planets []Planet `json:"planets"`
	}
	json.Unmarshal(body, &r)
	for _, p := range r.Planets {
		fmt.Printf("  %s  %s\n", p.ID, p.Name)
	}
	if CurrentPlanet == "" && len(r.Planets) > 0 {
		CurrentPlanet = r.Planets[0].ID
		fmt.Println(dimStyle.Render("Using planet " + CurrentPlanet))
	}
}

func doStatus() {
	code, body, err := call("GET", "/api/status", nil)
	if err != nil || code != http.StatusOK {
		show(code, body, err)
		return
	}
	var s StatusResponse
	json.Unmarshal(body, &s)
	fmt.Printf("World: %s | Uptime: %s | Sweeper: %v | Control: %v\n", s.World, s.Uptime, s.Sweeper, s.Control)
}

func doRobots() {
	code, body, err := call("GET", "/api/game/planets/"+CurrentPlanet+"/robots", nil)
	if err != nil || code != http.StatusOK {
		show(code, body, err)
		return
	}
	var r struct {
		Robots []Robot `json:"robots"`
	}
	json.Unmarshal(body, &r)
	if len(r.Robots) == 0 {
		fmt.Println(dimStyle.Render("No idle robots."))
	}
	for _, rb := range r.Robots {
		fmt.Printf("  %s  %-20s (%d, %d)\n", rb.ID, rb.Name, rb.X, rb.Y)
	}
}

// doMap prints discovered cells as a grid: M mine, A aliens, . empty.
func doMap() {
	code, body, err := call("GET", "/api/game/planets/"+CurrentPlanet+"/locations", nil)
	if err != nil || code != http.StatusOK {
		show(code, body, err)
		return
	}
	var r struct {
		Locations []Location `json:"locations"`
	}
	json.Unmarshal(body, &r)
	if len(r.Locations) == 0 {
		fmt.Println(dimStyle.Render("Nothing discovered yet."))
		return
	}
	cells := make(map[[2]int]Location)
	minX, minY, maxX, maxY := r.Locations[0].X, r.Locations[0].Y, r.Locations[0].X, r.Locations[0].Y
	for _, l := range r.Locations {
		cells[[2]int{l.X, l.Y}] = l
		minX, maxX = min(minX, l.X), max(maxX, l.X)
		minY, maxY = min(minY, l.Y), max(maxY, l.Y)
	}
	mine := lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	alien := lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	for y := minY; y <= maxY; y++ {
		var row strings.Builder
		for x := minX; x <= maxX; x++ {
			l, ok := cells[[2]int{x, y}]
			switch {
			case !ok:
				row.WriteString(dimStyle.Render(" ?"))
			case l.HasAliens:
				row.WriteString(alien.Render(" A"))
			case l.HasMine:
				row.WriteString(mine.Render(" M"))
			default:
				row.WriteString(" .")
			}
		}
		fmt.Printf("%4d%s\n", y, row.String())
	}
	for _, l := range r.Locations {
		if l.HasMine {
			fmt.Printf("  mine (%d, %d) %s %s\n", l.X, l.Y, l.ResourceName, dimStyle.Render(l.ResourceID))
		}
	}
}

func doBuild(args []string) {
	switch args[0] {
	case "robot":
		show(call("POST", "/api/game/action", map[string]interface{}{
			"actionType": "build_robot", "currentPlanetId": CurrentPlanet,
		}))
	case "refinery":
		if len(args) < 4 {
			fmt.Println("Usage: build refinery <resource_id> <x> <y>")
			return
		}
		x, _ := strconv.Atoi(args[2])
		y, _ := strconv.Atoi(args[3])
		show(call("POST", "/api/game/action", map[string]interface{}{
			"actionType": "build_refinery", "resourceId": args[1],
			"targetX": x, "targetY": y, "currentPlanetId": CurrentPlanet,
		}))
	default:
		fmt.Println("Unknown build target.")
	}
}
