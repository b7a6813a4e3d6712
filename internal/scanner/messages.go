package scanner

import "fmt"

// Message hiển thị cho operator (tiếng Thái, ngôn ngữ vận hành)

func msgNoAddressFromImage() string {
	return "ไม่สามารถอ่านที่อยู่ได้ - ลองถ่ายใหม่ให้ชัดขึ้น"
}

func msgNoManualAddress() string {
	return "กรุณากรอกที่อยู่"
}

func msgRouteMismatch(scanned, expected string) string {
	return fmt.Sprintf("รหัสนำส่งไม่ตรงกับเส้นทาง (พบ: %s, ต้องการ: %s)", scanned, expected)
}

func msgNotFound(token string) string {
	return fmt.Sprintf("ไม่พบพัสดุ \"%s\" ในระบบ", token)
}

func msgCrossArea(address, subDistrict, village string) string {
	return fmt.Sprintf("พัสดุนี้อยู่คนละพื้นที่: %s (ต.%s %s) - ไม่ได้บันทึกการสแกน", address, subDistrict, village)
}

func msgDuplicate(ordinal int) string {
	return fmt.Sprintf("พัสดุนี้สแกนแล้ว - ลำดับที่ %d", ordinal)
}

func msgNewMatch(address string, ordinal int) string {
	return fmt.Sprintf("พบพัสดุ: %s ✓ - ลำดับที่ %d", address, ordinal)
}
