// Package protection - движок защиты территорий: регионы с приоритетами,
// типизированные флаги, менеджеры регионов по мирам и вычисление
// итогового значения флага в точке.
//
// Пакет не знает о версиях API: совместимые с разными версиями фасады
// находятся в подпакетах legacy (6.x) и modern (7.x).
package protection
