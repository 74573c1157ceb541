package utils

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/mozillazg/go-pinyin"

	"github.com/fieldops-dev/shift-scheduler/backend/internal/domain"
)

var westernFirstNames = []string{
	"John", "Sarah", "James", "Emma", "Michael", "Sophie", "David", "Laura",
	"Pierre", "Marie", "Jean", "Claire", "Hans", "Anna", "Klaus", "Greta",
	"Oliver", "Alice", "Thomas", "Julia",
}
var westernLastNames = []string{
	"Smith", "Johnson", "Brown", "Wilson", "Taylor", "Davies", "Evans",
	"Dubois", "Martin", "Bernard", "Petit", "Muller", "Schmidt", "Weber",
	"Fischer", "Wagner", "Clark", "Hall", "Wright", "Walker",
}

var chineseSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
}
var chineseNameCharacters = []string{
	"伟", "强", "敏", "静", "杰", "涛", "明", "军", "磊", "洋",
	"超", "华", "平", "辉", "鑫", "龙", "鹏", "斌", "旭", "欣",
}

var roles = []string{"ENGINEER", "ENGINEER", "ENGINEER", "ADMIN"}

var digits = "0123456789"

func RandomChineseName() string {
	name := chineseSurnames[rand.Intn(len(chineseSurnames))]
	for i := 0; i < rand.Intn(2)+1; i++ {
		name += chineseNameCharacters[rand.Intn(len(chineseNameCharacters))]
	}
	return name
}

func RandomWesternName() string {
	first := westernFirstNames[rand.Intn(len(westernFirstNames))]
	last := westernLastNames[rand.Intn(len(westernLastNames))]
	return first + " " + last
}

// UsernameFromName romanizes CJK names through pinyin and lowercases the
// latin parts, with a numeric suffix to dodge collisions.
func UsernameFromName(name string) string {
	var username string
	if strings.ContainsRune(name, ' ') {
		username = strings.ToLower(strings.ReplaceAll(name, " ", "."))
	} else {
		for _, syllable := range pinyin.LazyConvert(name, nil) {
			username += syllable
		}
	}

	for i := 0; i < rand.Intn(3)+1; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

// RandomEngineer builds an engineer for countryCode, eligible for a random
// non-empty subset of sectorIDs.
func RandomEngineer(countryCode, emailDomain string, sectorIDs []int64) *domain.Engineer {
	var name string
	if countryCode == "CN" {
		name = RandomChineseName()
	} else {
		name = RandomWesternName()
	}
	username := UsernameFromName(name)

	return &domain.Engineer{
		Name:        name,
		Email:       username + "@" + emailDomain,
		Role:        roles[rand.Intn(len(roles))],
		Active:      rand.Intn(10) > 0, // roughly one in ten is inactive
		CountryCode: countryCode,
		SectorIDs:   RandomSubset(sectorIDs),
	}
}

// RandomSubset picks a random non-empty subset via Fisher-Yates.
func RandomSubset(ids []int64) []int64 {
	cp := append([]int64{}, ids...)
	for i := len(cp) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		cp[i], cp[j] = cp[j], cp[i]
	}
	return cp[:rand.Intn(len(cp))+1]
}

func RandomID(letterLength, digitLength int) string {
	letters := "abcdefghijklmnopqrstuvwxyz"
	id := make([]byte, letterLength+digitLength)
	for i := range id {
		if i < letterLength {
			id[i] = letters[rand.Intn(len(letters))]
		} else {
			id[i] = digits[rand.Intn(len(digits))]
		}
	}
	return string(id)
}

// RandomTimeWindow emits an HH:MM pair. Late start hours produce windows
// that cross midnight.
func RandomTimeWindow() (string, string) {
	startHour := rand.Intn(24)
	duration := rand.Intn(8) + 4
	endHour := (startHour + duration) % 24
	return fmt.Sprintf("%02d:%02d", startHour, rand.Intn(60)), fmt.Sprintf("%02d:%02d", endHour, rand.Intn(60))
}
